package progression

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymquest/internal/telemetry/tracing"
	"github.com/2beens/gymquest/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

//go:embed schema.sql
var schema string

// Migrate creates the progression tables if they do not exist yet.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply progression schema: %w", err)
	}
	return nil
}

// Repo is the Postgres Store.
type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) LogActivity(ctx context.Context, activity Activity, fact Fact) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.logActivity")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("activity.id", activity.ID))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err = finishTx(ctx, tx, err)
	}()

	_, err = tx.Exec(
		ctx,
		`INSERT INTO activity
				(id, user_id, category, duration_min, intensity, has_evidence, evidence_url,
				 weight, baseline_weight, exp_gained, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`,
		activity.ID, activity.UserID, activity.Category.String(), activity.DurationMin, activity.Intensity.String(),
		activity.HasEvidence, activity.EvidenceURL, activity.Weight, activity.BaselineWeight, activity.ExpGained,
		activity.CreatedAt,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return fmt.Errorf("activity %s: %w", activity.ID, ErrAlreadyLogged)
		}
		return fmt.Errorf("insert activity: %w", err)
	}

	if _, err = insertFact(ctx, tx, fact); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%s fact of activity %s: %w", fact.Kind, fact.ActivityID, ErrAlreadyLogged)
		}
		return fmt.Errorf("insert fact: %w", err)
	}
	return nil
}

func (r *Repo) GetActivity(ctx context.Context, userID, activityID string) (_ *Activity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.getActivity")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("activity.id", activityID))

	activity, err := scanActivity(r.db.QueryRow(
		ctx,
		activitySelect+` WHERE id = $1 AND user_id = $2 AND removed_at IS NULL;`,
		activityID, userID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrActivityNotFound
	}
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

func (r *Repo) ActivityFact(ctx context.Context, userID, activityID string, kind FactKind) (_ *Fact, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.activityFact")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("activity.id", activityID), attribute.String("fact.kind", kind.String()))

	rows, err := r.db.Query(
		ctx,
		factSelect+` WHERE user_id = $1 AND activity_id = $2 AND kind = $3;`,
		userID, activityID, kind.String(),
	)
	if err != nil {
		return nil, err
	}

	facts, err := scanFacts(rows)
	if err != nil {
		return nil, err
	}
	if len(facts) == 0 {
		return nil, ErrFactNotFound
	}
	return &facts[0], nil
}

func (r *Repo) ListActivities(ctx context.Context, userID string, before time.Time, limit int) (_ []Activity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.listActivities")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID), attribute.Int("limit", limit))

	rows, err := r.db.Query(
		ctx,
		activitySelect+`
			WHERE user_id = $1 AND removed_at IS NULL AND created_at < $2
			ORDER BY created_at DESC, id DESC
			LIMIT $3;`,
		userID, before, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		activities = append(activities, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("activities", len(activities)))
	return activities, nil
}

func (r *Repo) ActivityExpTotal(ctx context.Context, userID string) (_ float64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.activityExpTotal")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	var total float64
	err = r.db.QueryRow(
		ctx,
		`SELECT COALESCE(SUM(a.exp_gained), 0)
			FROM activity a
			JOIN progression_fact f
				ON f.user_id = a.user_id AND f.activity_id = a.id AND f.kind = 'activity_logged'
			WHERE a.user_id = $1 AND a.removed_at IS NULL AND f.status <> 'abandoned';`,
		userID,
	).Scan(&total)
	if err != nil {
		return 0, err
	}
	return roundExp(total), nil
}

func (r *Repo) LogActivityRemoval(ctx context.Context, userID, activityID string, removedAt time.Time, fact Fact) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.logActivityRemoval")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("activity.id", activityID))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err = finishTx(ctx, tx, err)
	}()

	tag, err := tx.Exec(
		ctx,
		`UPDATE activity SET removed_at = $3 WHERE id = $1 AND user_id = $2 AND removed_at IS NULL;`,
		activityID, userID, removedAt,
	)
	if err != nil {
		return fmt.Errorf("mark activity removed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrActivityNotFound
	}

	if _, err = insertFact(ctx, tx, fact); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%s fact of activity %s: %w", fact.Kind, fact.ActivityID, ErrAlreadyLogged)
		}
		return fmt.Errorf("insert fact: %w", err)
	}
	return nil
}

func (r *Repo) LogPenalties(ctx context.Context, facts []Fact) (_ []Fact, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.logPenalties")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("facts", len(facts)))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = finishTx(ctx, tx, err)
	}()

	var written []Fact
	for _, fact := range facts {
		fact.Day = DayOf(fact.Day)
		seq, err := insertFact(ctx, tx, fact)
		if errors.Is(err, pgx.ErrNoRows) {
			// the day is already penalized
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("insert penalty fact: %w", err)
		}
		fact.Seq = seq
		written = append(written, fact)
	}

	span.SetAttributes(attribute.Int("written", len(written)))
	return written, nil
}

func (r *Repo) PenalizedDays(ctx context.Context, userID string, from, to time.Time) (_ []time.Time, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.penalizedDays")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT day FROM progression_fact
			WHERE user_id = $1 AND kind = 'penalty' AND day >= $2::date AND day <= $3::date
			ORDER BY day;`,
		userID, DayOf(from), DayOf(to),
	)
	if err != nil {
		return nil, err
	}
	return scanDays(rows)
}

func (r *Repo) ActivityDates(ctx context.Context, userID string, from, to time.Time) (_ []time.Time, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.activityDates")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT DISTINCT (created_at AT TIME ZONE 'UTC')::date AS day
			FROM activity
			WHERE user_id = $1 AND removed_at IS NULL AND created_at >= $2 AND created_at < $3
			ORDER BY day DESC;`,
		userID, DayOf(from), DayOf(to).AddDate(0, 0, 1),
	)
	if err != nil {
		return nil, err
	}
	return scanDays(rows)
}

func (r *Repo) LatestActivityDate(ctx context.Context, userID string) (_ *time.Time, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.latestActivityDate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var latest *time.Time
	err = r.db.QueryRow(
		ctx,
		`SELECT MAX(created_at) FROM activity WHERE user_id = $1 AND removed_at IS NULL;`,
		userID,
	).Scan(&latest)
	if err != nil {
		return nil, err
	}
	return latest, nil
}

func (r *Repo) GetProgress(ctx context.Context, userID string) (_ UserProgress, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.getProgress")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		progressSelect+` WHERE user_id = $1;`,
		userID,
	)
	if err != nil {
		return UserProgress{}, err
	}

	progress, err := scanProgress(rows)
	if err != nil {
		return UserProgress{}, err
	}
	if len(progress) == 0 {
		return NewUserProgress(userID), nil
	}
	return progress[0], nil
}

func (r *Repo) PendingFacts(ctx context.Context, userID string) (_ []Fact, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.pendingFacts")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		factSelect+`
			WHERE user_id = $1 AND status = 'logged'
			ORDER BY seq;`,
		userID,
	)
	if err != nil {
		return nil, err
	}

	facts, err := scanFacts(rows)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("pending", len(facts)))
	return facts, nil
}

func (r *Repo) ApplyFact(ctx context.Context, fact Fact, expectedVersion int64, next UserProgress) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.applyFact")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("fact.id", fact.ID),
		attribute.String("fact.kind", fact.Kind.String()),
		attribute.Int64("version.expected", expectedVersion),
	)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err = finishTx(ctx, tx, err)
	}()

	appliedAt := next.UpdatedAt
	if appliedAt.IsZero() {
		appliedAt = time.Now().UTC()
	}

	tag, err := tx.Exec(
		ctx,
		`UPDATE progression_fact SET status = 'applied', applied_at = $2 WHERE id = $1 AND status = 'logged';`,
		fact.ID, appliedAt,
	)
	if err != nil {
		return fmt.Errorf("mark fact applied: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var status string
		err = tx.QueryRow(ctx, `SELECT status FROM progression_fact WHERE id = $1;`, fact.ID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("fact %s: %w", fact.ID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if FactStatus(status) == FactStatusAbandoned {
			return ErrFactAbandoned
		}
		return ErrFactAlreadyApplied
	}

	var lastActive *time.Time
	if next.LastActiveDate != nil {
		day := DayOf(*next.LastActiveDate)
		lastActive = &day
	}

	if expectedVersion == 0 {
		tag, err = tx.Exec(
			ctx,
			`INSERT INTO user_progress
					(user_id, exp, level, streak, last_active_date, penalty_total, decay_base_exp,
					 last_weight, activity_count, version, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1, $10)
				ON CONFLICT (user_id) DO NOTHING;`,
			fact.UserID, next.Exp, next.Level, next.Streak, lastActive, next.PenaltyTotal, next.DecayBaseExp,
			next.LastWeight, next.ActivityCount, appliedAt,
		)
	} else {
		tag, err = tx.Exec(
			ctx,
			`UPDATE user_progress SET
					exp = $2, level = $3, streak = $4, last_active_date = $5, penalty_total = $6,
					decay_base_exp = $7, last_weight = $8, activity_count = $9, version = version + 1,
					updated_at = $10
				WHERE user_id = $1 AND version = $11;`,
			fact.UserID, next.Exp, next.Level, next.Streak, lastActive, next.PenaltyTotal, next.DecayBaseExp,
			next.LastWeight, next.ActivityCount, appliedAt, expectedVersion,
		)
	}
	if err != nil {
		return fmt.Errorf("write progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}

	return nil
}

func (r *Repo) RecordApplyFailure(ctx context.Context, factID, reason string, abandon bool) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.recordApplyFailure")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("fact.id", factID), attribute.Bool("abandon", abandon))

	_, err = r.db.Exec(
		ctx,
		`UPDATE progression_fact SET
				attempts = attempts + 1,
				last_error = $2,
				status = CASE WHEN $3::boolean THEN 'abandoned' ELSE status END
			WHERE id = $1 AND status = 'logged';`,
		factID, reason, abandon,
	)
	return err
}

func (r *Repo) UsersWithPendingFacts(ctx context.Context, loggedBefore time.Time, limit int) (_ []string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.usersWithPendingFacts")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT DISTINCT user_id FROM progression_fact
			WHERE status = 'logged' AND created_at < $1
			ORDER BY user_id
			LIMIT $2;`,
		loggedBefore, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		users = append(users, userID)
	}
	return users, rows.Err()
}

func (r *Repo) IdleUsers(ctx context.Context, lastActiveBefore time.Time, afterUserID string, limit int) (_ []UserProgress, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progression.idleUsers")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		progressSelect+`
			WHERE last_active_date < $1::date AND user_id > $2
			ORDER BY user_id
			LIMIT $3;`,
		DayOf(lastActiveBefore), afterUserID, limit,
	)
	if err != nil {
		return nil, err
	}
	return scanProgress(rows)
}

const progressSelect = `
	SELECT user_id, exp, level, streak, last_active_date, penalty_total, decay_base_exp,
		last_weight, activity_count, version, updated_at
	FROM user_progress`

func scanProgress(rows pgx.Rows) ([]UserProgress, error) {
	defer rows.Close()

	var progress []UserProgress
	for rows.Next() {
		var p UserProgress
		if err := rows.Scan(
			&p.UserID, &p.Exp, &p.Level, &p.Streak, &p.LastActiveDate, &p.PenaltyTotal, &p.DecayBaseExp,
			&p.LastWeight, &p.ActivityCount, &p.Version, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		progress = append(progress, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return progress, nil
}

const activitySelect = `
	SELECT id, user_id, category, duration_min, intensity, has_evidence, evidence_url,
		weight, baseline_weight, exp_gained, created_at, removed_at
	FROM activity`

func scanActivity(row pgx.Row) (Activity, error) {
	var (
		activity  Activity
		category  string
		intensity string
	)
	if err := row.Scan(
		&activity.ID, &activity.UserID, &category, &activity.DurationMin, &intensity, &activity.HasEvidence,
		&activity.EvidenceURL, &activity.Weight, &activity.BaselineWeight, &activity.ExpGained,
		&activity.CreatedAt, &activity.RemovedAt,
	); err != nil {
		return Activity{}, err
	}
	activity.Category = Category(category)
	activity.Intensity = Intensity(intensity)
	return activity, nil
}

const factSelect = `
	SELECT id, user_id, seq, kind, delta, COALESCE(activity_id, ''), day, weight, status,
		attempts, last_error, created_at, applied_at
	FROM progression_fact`

func scanFacts(rows pgx.Rows) ([]Fact, error) {
	defer rows.Close()

	var facts []Fact
	for rows.Next() {
		var (
			fact   Fact
			kind   string
			status string
		)
		if err := rows.Scan(
			&fact.ID, &fact.UserID, &fact.Seq, &kind, &fact.Delta, &fact.ActivityID, &fact.Day, &fact.Weight,
			&status, &fact.Attempts, &fact.LastError, &fact.CreatedAt, &fact.AppliedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		fact.Kind = FactKind(kind)
		fact.Status = FactStatus(status)
		facts = append(facts, fact)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return facts, nil
}

func scanDays(rows pgx.Rows) ([]time.Time, error) {
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		days = append(days, DayOf(day))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return days, nil
}

// insertFact returns pgx.ErrNoRows when a unique key already holds an equivalent fact.
func insertFact(ctx context.Context, tx pgx.Tx, fact Fact) (int64, error) {
	var activityID *string
	if fact.ActivityID != "" {
		activityID = &fact.ActivityID
	}

	var seq int64
	err := tx.QueryRow(
		ctx,
		`INSERT INTO progression_fact
				(id, user_id, kind, delta, activity_id, day, weight, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, 'logged', $8)
			ON CONFLICT DO NOTHING
			RETURNING seq;`,
		fact.ID, fact.UserID, fact.Kind.String(), fact.Delta, activityID, DayOf(fact.Day), fact.Weight, fact.CreatedAt,
	).Scan(&seq)
	return seq, err
}

// finishTx commits on success and rolls back otherwise, keeping both errors.
func finishTx(ctx context.Context, tx pgx.Tx, err error) error {
	if err != nil {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			return fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
		}
		return err
	}
	return tx.Commit(ctx)
}
