package server

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/eskrenkovic/spellqueue/internal/config"
	"github.com/eskrenkovic/spellqueue/internal/modules/core"
	eventcommands "github.com/eskrenkovic/spellqueue/internal/modules/event/commands"
	eventdomain "github.com/eskrenkovic/spellqueue/internal/modules/event/domain"
	eventqueries "github.com/eskrenkovic/spellqueue/internal/modules/event/queries"
	gamesessioncommands "github.com/eskrenkovic/spellqueue/internal/modules/game-session/commands"
	gamesessiondomain "github.com/eskrenkovic/spellqueue/internal/modules/game-session/domain"
	gamesessionqueries "github.com/eskrenkovic/spellqueue/internal/modules/game-session/queries"
	"github.com/eskrenkovic/spellqueue/internal/modules/notify"
	"github.com/eskrenkovic/spellqueue/internal/modules/queue"
	queuecommands "github.com/eskrenkovic/spellqueue/internal/modules/queue/commands"
	queuequeries "github.com/eskrenkovic/spellqueue/internal/modules/queue/queries"
	settingscommands "github.com/eskrenkovic/spellqueue/internal/modules/settings/commands"
	settingsdomain "github.com/eskrenkovic/spellqueue/internal/modules/settings/domain"
	settingsqueries "github.com/eskrenkovic/spellqueue/internal/modules/settings/queries"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/migrate-go"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type Server interface {
	Start() error
	Stop(ctx context.Context) error
}

var _ Server = &HTTPServer{}

// HTTPServer acts as the composition root for an application.
type HTTPServer struct {
	server  *http.Server
	db      *sql.DB
	redis   *redis.Client
	sweeper *queue.Sweeper
	logger  *zap.Logger

	sweeperCtx  context.Context
	stopSweeper context.CancelFunc
	sweeperDone chan struct{}
	started     atomic.Bool
}

func NewHTTPServer(config config.Config) (*HTTPServer, error) {
	baseCtx := core.WithLogger(context.Background(), config.Logger)

	db, err := sql.Open("postgres", config.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if err := migrate.Run(baseCtx, db, config.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	var redisClient *redis.Client
	if config.Redis.URL != "" {
		opts, err := redis.ParseURL(config.Redis.URL)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		redisClient = redis.NewClient(opts)
	}

	// collaborators

	var settings settingsdomain.SettingsStore = settingsdomain.NewPostgresSettingsProvider(db, config.Queue.Defaults)
	notifiers := notify.Multi{notify.NewLogNotifier(config.Logger)}

	if redisClient != nil {
		settings = settingsdomain.NewRedisSettingsCache(
			redisClient,
			settings,
			settingsdomain.DefaultSettingsCacheTTL,
			config.Logger,
		)
		notifiers = append(notifiers, notify.NewRedisNotifier(redisClient, config.Redis.Channel, config.Logger))
	}

	sessions := gamesessiondomain.NewSessionRepository(db)
	events := eventdomain.NewPostgresEventStore(db)

	queueService := queue.NewService(queue.Options{
		Settings:     settings,
		Notifier:     notifiers,
		Store:        sessions,
		Logger:       config.Logger,
		MatchedGrace: config.Queue.MatchedGrace,
		Retention:    config.Queue.SessionRetention,
	})

	if err := registerHandlers(config.Logger, queueService, settings, sessions, events); err != nil {
		_ = db.Close()
		return nil, err
	}

	r := newRouter(
		core.CorrelationIDHTTPMiddleware,
		core.LoggerHTTPMiddleware(config.Logger),
	)

	// http

	r.register("GET /health", handleHealth(db))

	r.register("POST /communities/{communityID}/signups", queuecommands.HandleEnqueue)
	r.register("DELETE /communities/{communityID}/signups/{playerID}", queuecommands.HandleLeave)
	r.register("POST /communities/{communityID}/actions/tick", queuecommands.HandleTick)
	r.register("GET /communities/{communityID}/status", queuequeries.HandleGetStatus)

	r.register("GET /communities/{communityID}/settings", settingsqueries.HandleGetSettings)
	r.register("PUT /communities/{communityID}/settings", settingscommands.HandleUpdateSettings)

	r.register("GET /game-sessions/{id}", gamesessionqueries.HandleGetSession)
	r.register("PUT /game-sessions/{id}/actions/confirm", gamesessioncommands.HandleConfirmSession)
	r.register("PUT /game-sessions/{id}/actions/cancel", gamesessioncommands.HandleCancelSession)

	r.register("POST /communities/{communityID}/events", eventcommands.HandleImportEvent)
	r.register("GET /events/{id}", eventqueries.HandleGetEvent)
	r.register("PUT /events/{id}/actions/begin", eventcommands.HandleBeginEvent)

	handler := cors.New(cors.Options{
		AllowedOrigins: config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", core.CorrelationIDHeader},
		ExposedHeaders: []string{"Location", core.CorrelationIDHeader},
	}).Handler(r)

	server := http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(config.Port)),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	sweeperCtx, stopSweeper := context.WithCancel(baseCtx)

	return &HTTPServer{
		server:      &server,
		db:          db,
		redis:       redisClient,
		sweeper:     queue.NewSweeper(queueService, config.Queue.SweepInterval, config.Logger),
		logger:      config.Logger,
		sweeperCtx:  sweeperCtx,
		stopSweeper: stopSweeper,
		sweeperDone: make(chan struct{}),
	}, nil
}

func registerHandlers(
	logger *zap.Logger,
	queueService *queue.Service,
	settings settingsdomain.SettingsStore,
	sessions *gamesessiondomain.SessionRepository,
	events eventdomain.EventStore,
) error {
	requestLoggingBehavior := core.RequestLoggingBehavior{Logger: logger}
	handlerErrorLoggingBehavior := core.HandlerErrorLoggingBehavior{Logger: logger}
	requestValidationBehavior := core.RequestValidationBehavior{}

	mediator.RegisterPipelineBehavior(&requestLoggingBehavior)
	mediator.RegisterPipelineBehavior(&handlerErrorLoggingBehavior)
	mediator.RegisterPipelineBehavior(&requestValidationBehavior)

	// handler registration

	// queue

	err := mediator.RegisterRequestHandler[queuecommands.EnqueueCommand, queue.EnqueueResult](
		queuecommands.NewEnqueueCommandHandler(queueService),
	)
	if err != nil {
		return err
	}

	err = mediator.RegisterRequestHandler[queuecommands.LeaveCommand, queuecommands.LeaveResponse](
		queuecommands.NewLeaveCommandHandler(queueService),
	)
	if err != nil {
		return err
	}

	err = mediator.RegisterRequestHandler[queuecommands.TickCommand, queuecommands.TickResponse](
		queuecommands.NewTickCommandHandler(queueService),
	)
	if err != nil {
		return err
	}

	err = mediator.RegisterRequestHandler[queuequeries.GetStatusQuery, queue.Status](
		queuequeries.NewGetStatusQueryHandler(queueService),
	)
	if err != nil {
		return err
	}

	// settings

	err = mediator.RegisterRequestHandler[settingsqueries.GetSettingsQuery, queue.ScopeSettings](
		settingsqueries.NewGetSettingsQueryHandler(settings),
	)
	if err != nil {
		return err
	}

	err = mediator.RegisterRequestHandler[settingscommands.UpdateSettingsCommand, queue.ScopeSettings](
		settingscommands.NewUpdateSettingsCommandHandler(settings),
	)
	if err != nil {
		return err
	}

	// game-session

	err = mediator.RegisterRequestHandler[gamesessionqueries.GetSessionQuery, queue.GameSession](
		gamesessionqueries.NewGetSessionQueryHandler(queueService, sessions),
	)
	if err != nil {
		return err
	}

	err = mediator.RegisterRequestHandler[gamesessioncommands.ConfirmSessionCommand, queue.GameSession](
		gamesessioncommands.NewConfirmSessionCommandHandler(queueService),
	)
	if err != nil {
		return err
	}

	err = mediator.RegisterRequestHandler[gamesessioncommands.CancelSessionCommand, queue.GameSession](
		gamesessioncommands.NewCancelSessionCommandHandler(queueService),
	)
	if err != nil {
		return err
	}

	// event

	err = mediator.RegisterRequestHandler[eventcommands.ImportEventCommand, eventdomain.Event](
		eventcommands.NewImportEventCommandHandler(queueService, events),
	)
	if err != nil {
		return err
	}

	err = mediator.RegisterRequestHandler[eventqueries.GetEventQuery, eventdomain.Event](
		eventqueries.NewGetEventQueryHandler(events),
	)
	if err != nil {
		return err
	}

	return mediator.RegisterRequestHandler[eventcommands.BeginEventCommand, eventcommands.BeginEventResponse](
		eventcommands.NewBeginEventCommandHandler(queueService, events),
	)
}

// Start runs the expiry sweeper and serves HTTP until Stop is called.
func (s *HTTPServer) Start() error {
	if !s.started.CompareAndSwap(false, true) {
		return errors.New("server already started")
	}

	go func() {
		defer close(s.sweeperDone)
		s.sweeper.Run(s.sweeperCtx)
	}()

	s.logger.Info("http server listening", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Stop drains in-flight requests, stops the sweeper and releases the database and
// redis connections.
func (s *HTTPServer) Stop(ctx context.Context) error {
	var errs []error

	if err := s.server.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}

	s.stopSweeper()
	if s.started.Load() {
		select {
		case <-s.sweeperDone:
		case <-ctx.Done():
			errs = append(errs, ctx.Err())
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := s.db.Close(); err != nil {
		errs = append(errs, err)
	}

	_ = s.logger.Sync()

	return errors.Join(errs...)
}
