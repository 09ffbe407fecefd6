package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skillshare-backend/internal/config"
	"skillshare-backend/internal/handlers"
	"skillshare-backend/internal/middleware"
	"skillshare-backend/internal/monitoring"
	"skillshare-backend/internal/notify"
	"skillshare-backend/internal/repository"
	"skillshare-backend/internal/services"
	"skillshare-backend/internal/storage"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	ctx := context.Background()

	// Connect to database
	db, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	if err := repository.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	mediaRepo := repository.NewMediaRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	shareRepo := repository.NewShareRepository(db)
	followRepo := repository.NewFollowRepository(db)
	planRepo := repository.NewPlanRepository(db)
	progressRepo := repository.NewProgressRepository(db)

	// Media storage
	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create media storage")
	}

	// Notification channels
	inbox, err := notify.NewInbox(cfg.Redis.URL, cfg.Redis.InboxSize)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to redis")
	}
	defer inbox.Close()

	wsHub := services.NewWSHub()
	channels := []notify.Channel{inbox, wsHub}
	if cfg.APNs.Enabled {
		pusher, err := notify.NewAPNsPusher(cfg.APNs, userRepo)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create APNs client")
		}
		channels = append(channels, pusher)
	}
	dispatcher := notify.NewDispatcher(channels...)

	// Initialize services
	userService := services.NewUserService(userRepo, store, cfg.JWT.Secret, cfg.JWT.TTL)
	mediaService := services.NewMediaService(mediaRepo, store)
	postService := services.NewPostService(postRepo, userRepo, mediaService, dispatcher)
	commentService := services.NewCommentService(commentRepo, postRepo, userRepo, dispatcher)
	shareService := services.NewShareService(shareRepo, postRepo, userRepo, dispatcher)
	followService := services.NewFollowService(followRepo, userRepo, dispatcher)
	planService := services.NewPlanService(planRepo, userRepo)
	progressService := services.NewProgressService(progressRepo, userRepo)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, cfg.Server.MaxUploadBytes)
	followHandler := handlers.NewFollowHandler(followService)
	postHandler := handlers.NewPostHandler(postService, cfg.Server.MaxUploadBytes)
	commentHandler := handlers.NewCommentHandler(commentService)
	shareHandler := handlers.NewShareHandler(shareService)
	planHandler := handlers.NewPlanHandler(planService)
	progressHandler := handlers.NewProgressHandler(progressService)
	notificationHandler := handlers.NewNotificationHandler(inbox)
	wsHandler := handlers.NewWebSocketHandler(wsHub, userService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(monitoring.InstrumentHandler)
	r.Use(corsMiddleware)

	r.Get("/healthz", healthHandler(db, inbox))
	r.Handle("/metrics", promhttp.Handler())

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/users", userHandler.CreateUser)
		r.Get("/posts/{id}/comments", commentHandler.ListComments)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(userService))

			r.Get("/users/current", userHandler.GetCurrentUser)
			r.Put("/users/me", userHandler.UpdateProfile)
			r.Post("/users/me/photo", userHandler.UpdateProfilePhoto)
			r.Put("/users/me/push-token", userHandler.UpdatePushToken)
			r.Get("/users/{id}", userHandler.GetUser)
			r.Get("/users/{id}/posts", postHandler.ListUserPosts)
			r.Get("/users/{id}/followers", followHandler.ListFollowers)
			r.Get("/users/{id}/following", followHandler.ListFollowing)
			r.Get("/users/{id}/following/{followId}", followHandler.IsFollowing)
			r.Post("/users/{id}/follow/{followId}", followHandler.Follow)
			r.Delete("/users/{id}/follow/{followId}", followHandler.Unfollow)

			r.Get("/posts", postHandler.ListPosts)
			r.Post("/posts", postHandler.CreatePost)
			r.Get("/posts/shared/me", shareHandler.ListMyShares)
			r.Get("/posts/shared/user/{userId}", shareHandler.ListUserShares)
			r.Delete("/posts/shared/{id}", shareHandler.DeleteShare)
			r.Get("/posts/{id}", postHandler.GetPost)
			r.Put("/posts/{id}", postHandler.UpdatePost)
			r.Delete("/posts/{id}", postHandler.DeletePost)
			r.Post("/posts/{id}/like", postHandler.ToggleLike)
			r.Post("/posts/{id}/share", shareHandler.SharePost)

			r.Post("/posts/{id}/comments", commentHandler.CreateComment)
			r.Put("/posts/{id}/comments/{commentId}", commentHandler.UpdateComment)
			r.Delete("/posts/{id}/comments/{commentId}", commentHandler.DeleteComment)

			r.Get("/plans", planHandler.ListPlans)
			r.Post("/plans", planHandler.CreatePlan)
			r.Get("/plans/me", planHandler.ListMyPlans)
			r.Post("/plans/tasks/{taskId}/complete", planHandler.CompleteTask)
			r.Put("/plans/{id}", planHandler.UpdatePlan)
			r.Delete("/plans/{id}", planHandler.DeletePlan)
			r.Post("/plans/{id}/extend", planHandler.ExtendPlan)

			r.Get("/progress", progressHandler.ListUpdates)
			r.Post("/progress", progressHandler.CreateUpdate)
			r.Put("/progress/{id}", progressHandler.UpdateUpdate)
			r.Delete("/progress/{id}", progressHandler.DeleteUpdate)

			r.Get("/notifications", notificationHandler.ListNotifications)
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Hijacked websocket connections are not closed by Shutdown
	wsHub.CloseAll()

	// Shutdown HTTP server
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Let in-flight notifications reach the inbox before redis closes
	dispatcher.Wait()

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// pinger is anything healthHandler can check
type pinger interface {
	Ping(ctx context.Context) error
}

// healthHandler reports whether the database and redis are reachable
func healthHandler(deps ...pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		for _, dep := range deps {
			if err := dep.Ping(ctx); err != nil {
				log.Error().Err(err).Msg("Health check failed")
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
