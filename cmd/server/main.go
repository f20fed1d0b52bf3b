package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/engdahman/conference-app/internal/attendees"
	"github.com/engdahman/conference-app/internal/attendees/attendees_api"
	attendees_db "github.com/engdahman/conference-app/internal/attendees/db"
	"github.com/engdahman/conference-app/internal/auth"
	"github.com/engdahman/conference-app/internal/auth/auth_api"
	"github.com/engdahman/conference-app/internal/checkin"
	"github.com/engdahman/conference-app/internal/checkin/checkin_api"
	checkin_db "github.com/engdahman/conference-app/internal/checkin/db"
	"github.com/engdahman/conference-app/internal/config"
	"github.com/engdahman/conference-app/internal/content"
	"github.com/engdahman/conference-app/internal/content/cache"
	"github.com/engdahman/conference-app/internal/content/content_api"
	content_db "github.com/engdahman/conference-app/internal/content/db"
	"github.com/engdahman/conference-app/internal/kafka"
	"github.com/engdahman/conference-app/internal/logger"
	"github.com/engdahman/conference-app/internal/mailer"
	"github.com/engdahman/conference-app/internal/models"
	"github.com/engdahman/conference-app/internal/registration"
	"github.com/engdahman/conference-app/internal/registration/registration_api"
	"github.com/engdahman/conference-app/internal/sse"
	"github.com/engdahman/conference-app/internal/uploads"
	"github.com/engdahman/conference-app/internal/users"
	users_db "github.com/engdahman/conference-app/internal/users/db"
	"github.com/engdahman/conference-app/internal/users/users_api"
)

func verifyConnections(ctx context.Context, cfg *config.Config, log *logger.Logger) (*bun.DB, *redis.Client) {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Database.DSN)
		if err == nil {
			err = sqldb.Ping()
		}
		if err == nil {
			break
		}
		log.Error("DATABASE", fmt.Sprintf("PostgreSQL connection failed: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)
	log.Info("DATABASE", "PostgreSQL connection successful")

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	log.Info("DATABASE", fmt.Sprintf("Redis connection successful to %s", cfg.Redis.Addr))

	return bunDB, redisClient
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting conference service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}
	cfg := config.Load()

	ctx := context.Background()
	bunDB, redisClient := verifyConnections(ctx, cfg, log)
	defer bunDB.Close()
	defer redisClient.Close()

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics)
		defer producer.Close()
		log.Info("KAFKA", "Kafka producer initialized successfully")

		requiredTopics := []string{
			cfg.Kafka.Topics.AttendeeRegistered,
			cfg.Kafka.Topics.AttendeeCheckedIn,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, requiredTopics); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			log.Info("KAFKA", "Required topics ensured successfully")
		}
	} else {
		log.Warn("KAFKA", "Kafka disabled, domain events will not be published")
	}

	emitter := sse.NewCheckinEventEmitter()

	attendeeStore := attendees_db.NewStore(bunDB)
	checkinStore := checkin_db.NewStore(bunDB)
	contentStore := content_db.NewStore(bunDB)
	userStore := users_db.NewStore(bunDB)

	rules := checkin.Rules{
		CountryCode:  cfg.Checkin.CountryCode,
		MobilePrefix: cfg.Checkin.MobilePrefix,
	}
	var checkinPublisher checkin.Publisher
	var registrationPublisher registration.Publisher
	if producer != nil {
		checkinPublisher = producer
		registrationPublisher = producer
	}

	checkinService := checkin.NewService(checkinStore, rules, checkinPublisher, emitter, log)
	ticketMailer := mailer.New(cfg.Email, cfg.SiteName, log)
	registrationService := registration.NewService(attendeeStore, ticketMailer, registrationPublisher, log)
	settingsCache := cache.NewSettingsCache(redisClient, cfg.Redis.SettingsTTL)
	contentService := content.NewService(contentStore, settingsCache, log)
	attendeesService := attendees.NewService(attendeeStore, log)
	usersService := users.NewService(userStore, log)

	checkinHandler := checkin_api.NewHandler(checkinService, log)
	streamHandler := checkin_api.NewSSEHandler(emitter, log)
	registrationHandler := registration_api.NewHandler(registrationService, log)
	contentHandler := content_api.NewHandler(contentService, log)
	attendeesHandler := attendees_api.NewHandler(attendeesService, log)
	usersHandler := users_api.NewHandler(usersService, log)
	authHandler := auth_api.NewHandler(userStore, cfg.Auth, log)
	uploadHandler := uploads.NewHandler(cfg.Upload, log)

	authMiddleware, err := auth.NewMiddleware(ctx, cfg.Auth, log)
	if err != nil {
		log.Fatal("AUTH", fmt.Sprintf("Auth middleware setup failed: %v", err))
	}

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	// --- Public routes ---
	r.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok"}`)
	})
	r.Get("/api/settings", contentHandler.HandleGetSettings)
	r.Get("/api/speakers", contentHandler.HandleListSpeakers)
	r.Get("/api/sponsors", contentHandler.HandleListSponsors)
	r.Get("/api/committee", contentHandler.HandleListCommittee)
	r.Get("/api/agenda", contentHandler.HandleListAgenda)
	r.Post("/api/register", registrationHandler.HandleRegister)
	r.Post("/api/auth/login", authHandler.HandleLogin)
	r.Post("/api/auth/logout", authHandler.HandleLogout)

	uploadDir := http.Dir(cfg.Upload.Dir)
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(uploadDir)))

	// --- Staff routes (check-in operators and admins) ---
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireRole(models.RoleStaff))
		r.Get("/api/auth/me", authHandler.HandleMe)
		r.Get("/api/checkin", checkinHandler.HandleCheckin)
		r.Post("/api/checkin", checkinHandler.HandleCheckin)
	})
	log.Info("ROUTER", "Check-in routes registered under /api/checkin")

	// --- Admin routes ---
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireRole(models.RoleAdmin))

		r.Route("/api/admin", func(r chi.Router) {
			r.Put("/settings", contentHandler.HandleSaveSettings)

			r.Route("/speakers", func(r chi.Router) {
				r.Post("/", contentHandler.HandleCreateSpeaker)
				r.Put("/{id}", contentHandler.HandleUpdateSpeaker)
				r.Delete("/{id}", contentHandler.HandleDeleteSpeaker)
			})
			r.Route("/sponsors", func(r chi.Router) {
				r.Post("/", contentHandler.HandleCreateSponsor)
				r.Put("/{id}", contentHandler.HandleUpdateSponsor)
				r.Delete("/{id}", contentHandler.HandleDeleteSponsor)
			})
			r.Route("/committee", func(r chi.Router) {
				r.Post("/", contentHandler.HandleCreateCommitteeMember)
				r.Put("/{id}", contentHandler.HandleUpdateCommitteeMember)
				r.Delete("/{id}", contentHandler.HandleDeleteCommitteeMember)
			})
			r.Route("/agenda", func(r chi.Router) {
				r.Post("/", contentHandler.HandleCreateAgendaItem)
				r.Put("/{id}", contentHandler.HandleUpdateAgendaItem)
				r.Delete("/{id}", contentHandler.HandleDeleteAgendaItem)
			})

			r.Route("/attendees", func(r chi.Router) {
				r.Get("/", attendeesHandler.HandleList)
				r.Get("/{id}", attendeesHandler.HandleGet)
				r.Put("/{id}", attendeesHandler.HandleUpdate)
				r.Post("/delete", attendeesHandler.HandleBulkDelete)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", usersHandler.HandleList)
				r.Post("/", usersHandler.HandleCreate)
				r.Put("/{id}", usersHandler.HandleUpdate)
				r.Delete("/{id}", usersHandler.HandleDelete)
			})

			r.Get("/stats", attendeesHandler.HandleStats)
			r.Post("/upload", uploadHandler.HandleUpload)
			r.Get("/checkin/stream", streamHandler.HandleCheckinStream)
		})
	})
	log.Info("ROUTER", "Admin routes registered under /api/admin")

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Conference service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	} else {
		log.Info("HTTP", "Server shut down cleanly")
	}
}
