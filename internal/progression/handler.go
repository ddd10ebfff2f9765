package progression

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/gymquest/internal/auth"
	"github.com/2beens/gymquest/internal/locks"
	"github.com/2beens/gymquest/internal/telemetry/tracing"
	"github.com/2beens/gymquest/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/multierr"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=progression_test

const sweepLockName = "decay-sweep"

type progressionService interface {
	SubmitActivity(ctx context.Context, userID string, input ActivityInput) (*SubmitResult, error)
	DeleteActivity(ctx context.Context, userID, activityID string) (*DeleteResult, error)
	GetProgress(ctx context.Context, userID string) (*ProgressView, error)
	ListActivities(ctx context.Context, userID string, before time.Time, limit int) (*ActivityHistory, error)
	RunDecaySweep(ctx context.Context, asOf time.Time) (*SweepResult, error)
	Reconcile(ctx context.Context) (*ReconcileResult, error)
}

type sweepLocker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (string, error)
	Release(ctx context.Context, name, token string) error
}

type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// PendingResponse is sent with 202 when the fact is logged but not applied yet.
type PendingResponse struct {
	Message string `json:"message"`
	Result  any    `json:"result"`
}

type SweepResponse struct {
	SweepResult
	Errors []string `json:"errors,omitempty"`
}

type Handler struct {
	service      progressionService
	locker       sweepLocker
	sweepLockTTL time.Duration
	now          func() time.Time
}

func NewHandler(service progressionService, locker sweepLocker, sweepLockTTL time.Duration) *Handler {
	return &Handler{
		service:      service,
		locker:       locker,
		sweepLockTTL: sweepLockTTL,
		now:          time.Now,
	}
}

func (handler *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progression.submit")
	defer span.End()

	userID, ok := auth.UserID(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	if !strings.HasPrefix(r.Header.Get("Content-Type"), pkg.ContentType.JSON) {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var input ActivityInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Tracef("submit activity, unmarshal json params: %s", err)
		pkg.WriteJSON(w, ErrorResponse{Error: "malformed activity"}, http.StatusBadRequest)
		return
	}

	result, err := handler.service.SubmitActivity(ctx, userID, input)
	if err != nil {
		var partialErr *PartialApplyError
		if errors.As(err, &partialErr) && result != nil {
			span.SetStatus(codes.Error, "logged-pending")
			pkg.WriteJSON(w, PendingResponse{Message: PartialApplyMessage, Result: result}, http.StatusAccepted)
			return
		}
		span.RecordError(err)
		handler.writeError(w, "submit activity", err)
		return
	}

	span.SetAttributes(attribute.String("activity.id", result.ActivityID))
	log.Debugf("activity %s of user %s applied: +%.2f exp, level %d", result.ActivityID, userID, result.ExpDelta, result.NewLevel)
	pkg.WriteJSON(w, result, http.StatusCreated)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progression.delete")
	defer span.End()

	userID, ok := auth.UserID(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	activityID := mux.Vars(r)["id"]
	if activityID == "" {
		pkg.WriteJSON(w, ErrorResponse{Error: "activity id empty", Field: "id"}, http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("activity.id", activityID))

	result, err := handler.service.DeleteActivity(ctx, userID, activityID)
	if err != nil {
		var partialErr *PartialApplyError
		if errors.As(err, &partialErr) && result != nil {
			span.SetStatus(codes.Error, "logged-pending")
			pkg.WriteJSON(w, PendingResponse{Message: PartialApplyMessage, Result: result}, http.StatusAccepted)
			return
		}
		span.RecordError(err)
		handler.writeError(w, "delete activity", err)
		return
	}

	pkg.WriteJSON(w, result, http.StatusOK)
}

func (handler *Handler) HandleGetProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progression.get")
	defer span.End()

	userID, ok := auth.UserID(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	view, err := handler.service.GetProgress(ctx, userID)
	if err != nil {
		span.RecordError(err)
		handler.writeError(w, "get progress", err)
		return
	}

	pkg.WriteJSON(w, view, http.StatusOK)
}

func (handler *Handler) HandleListActivities(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progression.list")
	defer span.End()

	userID, ok := auth.UserID(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var before time.Time
	if beforeParam := r.URL.Query().Get("before"); beforeParam != "" {
		parsed, err := time.Parse(time.RFC3339Nano, beforeParam)
		if err != nil {
			pkg.WriteJSON(w, ErrorResponse{Error: "before must be an RFC 3339 timestamp", Field: "before"}, http.StatusBadRequest)
			return
		}
		before = parsed
	}

	limit := 0
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed <= 0 {
			pkg.WriteJSON(w, ErrorResponse{Error: "limit must be a positive number", Field: "limit"}, http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	history, err := handler.service.ListActivities(ctx, userID, before, limit)
	if err != nil {
		span.RecordError(err)
		handler.writeError(w, "list activities", err)
		return
	}

	pkg.WriteJSON(w, history, http.StatusOK)
}

func (handler *Handler) HandleDecaySweep(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progression.sweep")
	defer span.End()

	asOf := handler.now().UTC()
	if dateParam := r.URL.Query().Get("date"); dateParam != "" {
		parsed, err := time.Parse(time.DateOnly, dateParam)
		if err != nil {
			pkg.WriteJSON(w, ErrorResponse{Error: "date must be YYYY-MM-DD", Field: "date"}, http.StatusBadRequest)
			return
		}
		asOf = parsed
	}
	span.SetAttributes(attribute.String("as_of", DayOf(asOf).Format(time.DateOnly)))

	token, err := handler.locker.Acquire(ctx, sweepLockName, handler.sweepLockTTL)
	if errors.Is(err, locks.ErrNotAcquired) {
		log.Warnln("decay sweep not started, another one is running")
		pkg.WriteJSON(w, ErrorResponse{Error: "decay sweep already running"}, http.StatusConflict)
		return
	}
	if err != nil {
		log.Errorf("decay sweep not started: %s", err)
		pkg.WriteJSON(w, ErrorResponse{Error: "lock unavailable, please retry"}, http.StatusServiceUnavailable)
		return
	}
	defer func() {
		if err := handler.locker.Release(context.WithoutCancel(ctx), sweepLockName, token); err != nil {
			log.Errorf("release decay sweep lock: %s", err)
		}
	}()

	result, err := handler.service.RunDecaySweep(ctx, asOf)
	if result == nil {
		span.RecordError(err)
		handler.writeError(w, "decay sweep", err)
		return
	}

	response := SweepResponse{SweepResult: *result}
	if err != nil {
		log.Errorf("decay sweep as of %s finished with errors: %s", result.AsOf.Format(time.DateOnly), err)
		response.Errors = errorStrings(err)
	}
	pkg.WriteJSON(w, response, http.StatusOK)
}

func (handler *Handler) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progression.reconcile")
	defer span.End()

	result, err := handler.service.Reconcile(ctx)
	if result == nil {
		span.RecordError(err)
		handler.writeError(w, "reconcile", err)
		return
	}
	if err != nil {
		log.Errorf("reconcile finished with errors: %s", err)
	}

	pkg.WriteJSON(w, result, http.StatusOK)
}

func (handler *Handler) writeError(w http.ResponseWriter, op string, err error) {
	var (
		validationErr *ValidationError
		conflictErr   *ConflictError
		storageErr    *StorageError
	)
	switch {
	case errors.As(err, &validationErr):
		pkg.WriteJSON(w, ErrorResponse{Error: validationErr.Error(), Field: validationErr.Field}, http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		pkg.WriteJSON(w, ErrorResponse{Error: err.Error()}, http.StatusNotFound)
	case errors.Is(err, ErrAlreadyLogged):
		pkg.WriteJSON(w, ErrorResponse{Error: err.Error()}, http.StatusConflict)
	case errors.As(err, &conflictErr):
		pkg.WriteJSON(w, ErrorResponse{Error: "progress changed concurrently, please retry"}, http.StatusConflict)
	case errors.As(err, &storageErr):
		log.Errorf("%s: %s", op, err)
		if storageErr.Retryable() {
			w.Header().Set("Retry-After", "1")
		}
		pkg.WriteJSON(w, ErrorResponse{Error: "storage unavailable, please retry"}, http.StatusServiceUnavailable)
	default:
		log.Errorf("%s: %s", op, err)
		pkg.WriteJSON(w, ErrorResponse{Error: "internal error"}, http.StatusInternalServerError)
	}
}

func errorStrings(err error) []string {
	var messages []string
	for _, e := range multierr.Errors(err) {
		messages = append(messages, e.Error())
	}
	return messages
}
