package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/multierr"

	"github.com/2beens/gymquest/internal/auth"
	"github.com/2beens/gymquest/internal/config"
	"github.com/2beens/gymquest/internal/db"
	"github.com/2beens/gymquest/internal/locks"
	"github.com/2beens/gymquest/internal/middleware"
	"github.com/2beens/gymquest/internal/notify"
	"github.com/2beens/gymquest/internal/progression"
	"github.com/2beens/gymquest/internal/telemetry/metrics"
	"github.com/2beens/gymquest/internal/telemetry/tracing"
	"github.com/2beens/gymquest/pkg"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client
	rateLimiter middleware.RequestRateLimiter
	checker     auth.Checker
	publisher   *notify.KafkaPublisher

	handler    *progression.Handler
	reconciler *progression.Reconciler

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	AppToken                string
	AdminTokenHash          string
	DBUser                  string
	DBPassword              string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.DBHost,
		DBPort:         params.Config.DBPort,
		DBName:         params.Config.DBName,
		DBUser:         params.DBUser,
		DBPassword:     params.DBPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := progression.Migrate(ctx, dbPool); err != nil {
		dbPool.Close()
		return nil, err
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": params.Config.DBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("gymquest", "service", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0,
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "gymquest-service", rdb)
	if err != nil {
		dbPool.Close()
		return nil, err
	}

	engineConfig, err := params.Config.Progression.EngineConfig()
	if err != nil {
		dbPool.Close()
		return nil, err
	}

	var (
		coordinatorOpts []progression.CoordinatorOption
		publisher       *notify.KafkaPublisher
	)
	if len(params.Config.KafkaBrokers) > 0 {
		publisher = notify.NewKafkaPublisher(params.Config.KafkaBrokers, params.Config.KafkaTopic)
		coordinatorOpts = append(coordinatorOpts, progression.WithEventPublisher(publisher))
		log.Debugf("publishing progress events to %s on %v", params.Config.KafkaTopic, params.Config.KafkaBrokers)
	} else {
		log.Warnln("kafka brokers not set, progress events will not be published")
	}

	coordinator, err := progression.NewCoordinator(
		progression.NewRepo(dbPool),
		engineConfig,
		metricsManager,
		coordinatorOpts...,
	)
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("new coordinator: %w", err)
	}

	return &Server{
		config:      params.Config,
		versionInfo: params.VersionInfo,
		dbPool:      dbPool,
		redisClient: rdb,
		rateLimiter: redis_rate.NewLimiter(rdb),
		checker:     auth.NewTokenChecker(params.AppToken, params.AdminTokenHash),
		publisher:   publisher,

		handler:    progression.NewHandler(coordinator, locks.NewRedisLock(rdb), params.Config.SweepLockTTL),
		reconciler: progression.NewReconciler(coordinator, params.Config.ReconcileInterval),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("gymquest-router"))

	r.HandleFunc("/health", s.handleHealth).Methods("GET").Name("health")
	r.HandleFunc("/version", s.handleVersion).Methods("GET").Name("version")

	submitRateLimit := middleware.RateLimit(
		s.rateLimiter,
		s.metricsManager,
		"submit-activity",
		s.config.SubmitRateLimitPerMin,
	)
	r.Handle("/progress/activities", submitRateLimit(http.HandlerFunc(s.handler.HandleSubmit))).Methods("POST").Name("submit-activity")
	r.HandleFunc("/progress/activities", s.handler.HandleListActivities).Methods("GET").Name("list-activities")
	r.HandleFunc("/progress/activities/{id}", s.handler.HandleDelete).Methods("DELETE").Name("delete-activity")
	r.HandleFunc("/progress", s.handler.HandleGetProgress).Methods("GET").Name("get-progress")

	r.HandleFunc("/admin/decay/sweep", s.handler.HandleDecaySweep).Methods("POST").Name("decay-sweep")
	r.HandleFunc("/admin/reconcile", s.handler.HandleReconcile).Methods("POST").Name("reconcile")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.checker)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(authMiddleware.AuthCheck())

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.dbPool != nil {
		if err := s.dbPool.Ping(r.Context()); err != nil {
			log.Errorf("health check, ping db: %s", err)
			pkg.WriteResponse(w, pkg.ContentType.Text, "db unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	pkg.WriteTextResponseOK(w, "ok")
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, s.versionInfo)
}

// Serve starts the API and metrics servers and the reconcile loop, and returns right away.
func (s *Server) Serve(ctx context.Context, host string, port int) {
	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      s.routerSetup(),
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}))
	metricsAddr := net.JoinHostPort(host, strconv.Itoa(s.config.MetricsPort))
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	go s.reconciler.Start(ctx)

	s.metricsManager.GaugeLifeSignal.Set(1)
}

// GracefulShutdown expects the ctx passed to Serve to be cancelled already.
func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")
	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	var err error
	if s.httpServer != nil {
		err = multierr.Append(err, s.httpServer.Shutdown(ctx))
	}
	if s.metricsHttpServer != nil {
		err = multierr.Append(err, s.metricsHttpServer.Shutdown(ctx))
	}
	if err != nil {
		log.Errorf(" >>> failed to gracefully shutdown http servers: %s", err)
	}
	log.Warnln("servers shut down")

	if s.httpServer != nil {
		s.reconciler.Wait()
		log.Debugln("reconciler stopped")
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			log.Errorf("failed to close kafka publisher: %s", err)
		}
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close()
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
