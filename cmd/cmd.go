package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crew-match-backend/internal/config"
	"crew-match-backend/internal/handlers"
	"crew-match-backend/internal/middleware"
	"crew-match-backend/internal/repository"
	"crew-match-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func Run() {
	configPath := os.Getenv("CREW_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := repository.Migrate(cfg.Database.URL()); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	db, err := repository.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("Database connection established")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	photoRepo := repository.NewPhotoRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	swipeRepo := repository.NewSwipeRepository(db)

	// Initialize services
	wsHub := services.NewWSHub()
	notifier := newNotifier(userRepo, cfg.APNs)

	userService := services.NewUserService(userRepo, cfg.JWT.Secret, cfg.JWT.TTL)
	profileService := services.NewProfileService(profileRepo, photoRepo)
	photoService, err := services.NewPhotoService(photoRepo, profileRepo, cfg.AWS)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create photo service")
	}
	matchService := services.NewMatchService(
		matchRepo,
		swipeRepo,
		profileService,
		newPolicy(cfg.Matching, swipeRepo),
		wsHub,
		notifier,
	)
	messageService := services.NewMessageService(messageRepo, matchService, wsHub, notifier)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	profileHandler := handlers.NewProfileHandler(profileService)
	photoHandler := handlers.NewPhotoHandler(photoService)
	matchHandler := handlers.NewMatchHandler(matchService)
	messageHandler := handlers.NewMessageHandler(messageService)
	wsHandler := handlers.NewWebSocketHandler(wsHub, userService, matchService)

	// Setup router
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/signup", userHandler.SignUp)
		r.Post("/auth/signin", userHandler.SignIn)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(userService))

			r.Get("/me", userHandler.Me)
			r.Put("/me/push-token", userHandler.UpdatePushToken)

			r.Post("/profiles", profileHandler.CreateProfile)
			r.Get("/profiles", profileHandler.ListCandidates)
			r.Get("/profiles/me", profileHandler.GetMyProfile)
			r.Put("/profiles/me", profileHandler.UpdateMyProfile)
			r.Post("/profiles/me/photos/upload", photoHandler.UploadPhoto)

			r.Post("/swipes", matchHandler.Swipe)
			r.Get("/matches", matchHandler.ListMatches)
			r.Get("/matches/resolve", matchHandler.ResolveMatch)
			r.Get("/matches/{match_id}/messages", messageHandler.ListMessages)
			r.Post("/matches/{match_id}/messages", messageHandler.SendMessage)
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		// hijacked websocket connections are not tracked by Shutdown
		wsHub.Close()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
	}

	log.Info().Msg("Server exited")
}

// newPolicy selects the match acceptance policy
func newPolicy(cfg config.MatchingConfig, swipes services.SwipeStore) services.AcceptancePolicy {
	if cfg.Policy == "mutual" {
		log.Info().Msg("Matching on mutual right swipes")
		return services.MutualPolicy{Swipes: swipes}
	}
	log.Warn().Float64("probability", cfg.Probability).Msg("Matching with the random placeholder policy")
	return services.RandomPolicy{Probability: cfg.Probability}
}

// newNotifier returns an APNs notifier when configured
func newNotifier(users services.UserStore, cfg config.APNsConfig) services.Notifier {
	if !cfg.Enabled() {
		return services.NopNotifier{}
	}
	notifier, err := services.NewAPNsNotifier(users, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Push notifications disabled")
		return services.NopNotifier{}
	}
	return notifier
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
