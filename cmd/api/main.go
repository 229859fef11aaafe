package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/justsurfingit/applicant-tracker/internal/auth"
	"github.com/justsurfingit/applicant-tracker/internal/config"
	"github.com/justsurfingit/applicant-tracker/internal/database"
	"github.com/justsurfingit/applicant-tracker/internal/forms"
	"github.com/justsurfingit/applicant-tracker/internal/handlers"
	"github.com/justsurfingit/applicant-tracker/internal/services"
	"github.com/justsurfingit/applicant-tracker/internal/storage"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using the process environment")
	}
	cfg := config.Load()
	cfg.SetupLogging()
	if err := cfg.CheckAdminAuth(); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Persistence
	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Database setup failed: %v", err)
	}
	files, closeFiles, err := openFileStore(cfg)
	if err != nil {
		log.Fatalf("File storage setup failed: %v", err)
	}
	defer closeFiles()

	// 3. Core services
	formService := services.NewFormService(store)
	if _, err := formService.EnsureDefault(ctx); err != nil {
		log.Fatalf("Could not prepare the default form: %v", err)
	}
	jobService := services.NewJobService(store, store)

	var extractor services.JobExtractor
	if cfg.LLMEnabled() {
		llm, err := services.NewLLMService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.WithError(err).Warn("Job extraction disabled")
		} else {
			extractor = llm
		}
	} else {
		log.Info("GEMINI_API_KEY not set, job extraction disabled")
	}

	// 4. Gmail for new-application alerts
	notifier := services.NewNotificationService(store, gmailSender(ctx, cfg), cfg.NotifyFrom)
	applicationService := services.NewApplicationService(store, files, jobService, notifier)

	// 5. Router & CORS
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	} else {
		corsConfig.AllowAllOrigins = true // For development only
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	handlers.Register(r, handlers.Handlers{
		Jobs:         handlers.NewJobHandler(extractor, jobService),
		Forms:        handlers.NewFormHandler(formService),
		Applications: handlers.NewApplicationHandler(applicationService, cfg.MaxUploadMB),
	}, cfg.AdminJWTSecret)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Infof("Server starting on port %s...", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start: ", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
	notifier.Wait()
}

func openStore(cfg *config.Config) (database.Store, error) {
	switch cfg.StoreDriver {
	case "memory":
		log.Warn("STORE_DRIVER=memory: data is lost on restart")
		return database.NewMemoryStore(), nil
	case "postgres", "":
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return database.NewGormStore(db), nil
	}
	return nil, errors.New("unknown STORE_DRIVER " + cfg.StoreDriver)
}

func openFileStore(cfg *config.Config) (forms.FileStore, func(), error) {
	switch cfg.FileStore {
	case "sqlite":
		s, err := storage.NewSQLiteStore(cfg.FileDBPath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case "disk", "":
		s, err := storage.NewDiskStore(cfg.UploadDir)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	}
	return nil, nil, errors.New("unknown FILE_STORE " + cfg.FileStore)
}

// gmailSender returns nil when Gmail is not set up; alerts are then skipped.
func gmailSender(ctx context.Context, cfg *config.Config) services.MailSender {
	if _, err := os.Stat(cfg.GmailCredentials); err != nil {
		log.Infof("%s not found, new-application alerts disabled", cfg.GmailCredentials)
		return nil
	}
	log.Println("Initializing Gmail Client...")
	httpClient, err := auth.GmailClient(ctx, cfg.GmailCredentials, cfg.GmailToken)
	if err != nil {
		log.WithError(err).Warn("Gmail authorisation failed, alerts disabled")
		return nil
	}
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		log.WithError(err).Warn("Failed to create Gmail Service")
		return nil
	}
	log.Println("Gmail Service connected successfully.")
	return &services.GmailSender{Service: svc}
}
