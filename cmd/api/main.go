package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vportela/leadcrm/internal/auth"
	"github.com/vportela/leadcrm/internal/config"
	"github.com/vportela/leadcrm/internal/infra/database"
	"github.com/vportela/leadcrm/internal/infra/http/handlers"
	"github.com/vportela/leadcrm/internal/infra/http/middleware"
	"github.com/vportela/leadcrm/internal/infra/integration/sheets"
	"github.com/vportela/leadcrm/internal/infra/integration/wordpress"
	"github.com/vportela/leadcrm/internal/infra/mail"
	"github.com/vportela/leadcrm/internal/infra/queue"
	"github.com/vportela/leadcrm/internal/usecase"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}

	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
	}

	// Repositories
	leadRepo := database.NewLeadRepository(db)
	eventRepo := database.NewLeadEventRepository(db)
	roleRepo := database.NewRoleRepository(db)
	settingsRepo := database.NewSettingsRepository(db)

	// Messaging. Optional: without a broker, change events stay in-process.
	var rabbit *queue.RabbitMQ
	var producer usecase.QueueProducerInterface
	if cfg.AMQPURL != "" {
		rabbit, err = queue.NewRabbitMQ(cfg.AMQPURL)
		if err != nil {
			logger.Fatal("rabbitmq connection failed", zap.Error(err))
		}
		defer rabbit.Close()
		producer = queue.NewProducer(rabbit.Conn, rabbit.Ch)

		sinks := []queue.ConversionSink{
			wordpress.NewClient(),
			sheets.NewClient(leadRepo),
		}
		if cfg.MailHost != "" {
			sinks = append(sinks,
				mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom))
		}

		worker := queue.NewWorker(rabbit.Ch, settingsRepo, logger, sinks...)
		worker.OnSinkError = middleware.RecordIntegrationError
		go func() {
			if err := worker.Start(queue.ConversionQueueName); err != nil {
				logger.Error("conversion worker stopped", zap.Error(err))
			}
		}()
	}

	// Auth
	verifier := auth.NewTokenVerifier(cfg.JWTSecret)
	resolver := auth.NewRoleResolver(roleRepo, rdb, time.Duration(cfg.RoleCacheTTLMin)*time.Minute, logger)

	// Usecases
	feed := usecase.NewFeed()
	leadUC := usecase.NewLeadUseCase(leadRepo, eventRepo, producer, feed, logger)

	// Handlers
	leadHandler := handlers.NewLeadHandler(leadUC)
	webhookHandler := handlers.NewWebhookHandler(logger)
	statsHandler := handlers.NewStatsHandler(leadUC)
	exportHandler := handlers.NewExportHandler(leadUC)
	settingsHandler := handlers.NewSettingsHandler(settingsRepo)
	eventsHandler := handlers.NewEventsHandler(feed)
	healthHandler := handlers.NewHealthHandler(db, rabbitConn(rabbit), rdb)

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "X-Client-Info", "ApiKey", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(verifier, resolver))

		r.HandleFunc("/leads", leadHandler.Handle)
		r.Get("/leads/history", leadHandler.HandleHistory)
		r.Get("/leads/events", eventsHandler.Handle)
		r.Post("/webhook", webhookHandler.Handle)
		r.Get("/webhook/test", webhookHandler.HandleTest)
		r.Get("/stats", statsHandler.HandleOverview)
		r.Get("/stats/leaderboard", statsHandler.HandleLeaderboard)
		r.Get("/export/csv", exportHandler.HandleCSV)
		r.Get("/settings", settingsHandler.HandleGet)
		r.Put("/settings", settingsHandler.HandlePut)
	})

	logger.Info("leadcrm api listening", zap.String("addr", cfg.HTTPAddr))
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func rabbitConn(r *queue.RabbitMQ) *amqp091.Connection {
	if r == nil {
		return nil
	}
	return r.Conn
}
