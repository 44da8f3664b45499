package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/plusone-alumni/plusone/internal/backend"
	"github.com/plusone-alumni/plusone/internal/config"
	"github.com/plusone-alumni/plusone/internal/database"
	"github.com/plusone-alumni/plusone/internal/handlers"
	"github.com/plusone-alumni/plusone/internal/logging"
	"github.com/plusone-alumni/plusone/internal/middleware"
	"github.com/plusone-alumni/plusone/internal/services"
)

func main() {
	if err := run(); err != nil {
		logging.Error("Application error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	logger := logging.New()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.Server.Debug {
		logger.SetLevel(logging.LevelDebug)
		logging.SetDefaultLevel(logging.LevelDebug)
		logger.Debug("Debug logging enabled", map[string]interface{}{"env": cfg.Server.Environment})
	}

	logger.Info("Starting PlusOne web client...", map[string]interface{}{
		"backend": cfg.Backend.BaseURL,
	})
	client := backend.New(cfg.Backend.BaseURL, cfg.Backend.Timeout)

	logger.Info("Connecting to Redis", map[string]interface{}{
		"addr": cfg.Redis.Addr(),
	})
	redisDB, err := database.ConnectRedis(context.Background(), cfg.Redis)
	if err != nil {
		return err
	}
	defer func() { _ = redisDB.Close() }()
	logger.Info("Connected to Redis")

	checks := map[string]handlers.Checker{
		"redis":   redisDB,
		"backend": handlers.CheckerFunc(client.Ping),
	}
	handler, err := newHandler(cfg, logger, client, services.NewRedisAdapter(redisDB.Client), redisDB.Client, checks)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: handler,
		// Photo uploads are the largest requests; the backend timeout bounds
		// everything else.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Backend.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Could not gracefully shutdown the server", map[string]interface{}{
				"error": err.Error(),
			})
		}
		close(done)
	}()

	logger.Info("Server listening", map[string]interface{}{
		"addr": addr,
	})
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	logger.Info("Server stopped")
	return nil
}

// newHandler wires services, handlers and middleware into the full router.
// A nil scripter disables auth rate limiting.
func newHandler(cfg *config.Config, logger *logging.Logger, client services.Backend, rdb services.RedisClient, scripter redis.Scripter, checks map[string]handlers.Checker) (http.Handler, error) {
	sessionService := services.NewSessionService(rdb, cfg.Session.TTL)
	guard := services.NewInFlightGuard(rdb, cfg.Session.InFlightTTL)

	connectionService := services.NewConnectionService(client)
	connectionService.SetInFlightGuard(guard)
	authService := services.NewAuthService(client)
	feedService := services.NewFeedService(client, connectionService)
	postService := services.NewPostService(client)
	postService.SetInFlightGuard(guard)
	myPageService := services.NewMyPageService(client, connectionService, postService)
	searchService := services.NewSearchService(client)

	healthHandler := handlers.NewHealthHandler(checks)
	authHandler := handlers.NewAuthHandler(authService, sessionService, cfg.Server.Secure)
	feedHandler := handlers.NewFeedHandler(feedService)
	connectionHandler := handlers.NewConnectionHandler(connectionService, myPageService)
	onboardingHandler := handlers.NewOnboardingHandler(client)
	onboardingHandler.SetInFlightGuard(guard)
	myPageHandler := handlers.NewMyPageHandler(myPageService)
	postHandler := handlers.NewPostHandler(postService)
	searchHandler := handlers.NewSearchHandler(searchService)
	pageHandler, err := handlers.NewPageHandler(cfg.Server.TemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	authMiddleware := middleware.NewAuthMiddleware(sessionService)
	securityHeaders := middleware.NewSecurityHeaders(cfg.Server.Secure)
	requestLogger := middleware.NewRequestLogger(logger)

	authRateLimit := resolveAuthRateLimit(cfg, logger, os.LookupEnv)
	authRateLimiter := middleware.NewRateLimiter(scripter, authRateLimit, cfg.RateLimit.AuthWindow, "ratelimit:auth:", nil, false)

	requireSession := authMiddleware.RequireSession
	limited := authRateLimiter.Middleware

	mux := http.NewServeMux()

	// Health endpoints (no auth, no rate limit)
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /live", healthHandler.Live)

	// Auth endpoints
	mux.Handle("POST /api/auth/signup", limited(http.HandlerFunc(authHandler.Signup)))
	mux.Handle("POST /api/auth/login", limited(http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST /api/auth/logout", http.HandlerFunc(authHandler.Logout))
	mux.Handle("GET /api/auth/me", requireSession(http.HandlerFunc(authHandler.Me)))

	mux.Handle("GET /api/feed", requireSession(http.HandlerFunc(feedHandler.Get)))

	// Connection endpoints
	mux.Handle("POST /api/connections/requests", requireSession(http.HandlerFunc(connectionHandler.SendRequest)))
	mux.Handle("GET /api/connections/requests", requireSession(http.HandlerFunc(connectionHandler.Pending)))
	mux.Handle("POST /api/connections/requests/{id}/accept", requireSession(http.HandlerFunc(connectionHandler.Accept)))
	mux.Handle("POST /api/connections/requests/{id}/reject", requireSession(http.HandlerFunc(connectionHandler.Reject)))
	mux.Handle("GET /api/connections/status/{userId}", requireSession(http.HandlerFunc(connectionHandler.Status)))

	// Onboarding endpoints
	mux.Handle("GET /api/onboarding", requireSession(http.HandlerFunc(onboardingHandler.Get)))
	mux.Handle("POST /api/onboarding/next", requireSession(http.HandlerFunc(onboardingHandler.Next)))
	mux.Handle("POST /api/onboarding/finish", requireSession(http.HandlerFunc(onboardingHandler.Finish)))
	mux.Handle("POST /api/onboarding/photo", requireSession(http.HandlerFunc(onboardingHandler.UploadPhoto)))

	mux.Handle("GET /api/me/page", requireSession(http.HandlerFunc(myPageHandler.Get)))

	// Post endpoints
	mux.Handle("GET /api/posts", requireSession(http.HandlerFunc(postHandler.List)))
	mux.Handle("POST /api/posts", requireSession(http.HandlerFunc(postHandler.Create)))
	mux.Handle("PUT /api/posts/{id}", requireSession(http.HandlerFunc(postHandler.Update)))
	mux.Handle("DELETE /api/posts/{id}", requireSession(http.HandlerFunc(postHandler.Delete)))

	mux.Handle("GET /api/search", requireSession(http.HandlerFunc(searchHandler.Search)))

	// Page shell; views are switched client-side
	mux.HandleFunc("GET /{$}", pageHandler.Index)
	mux.HandleFunc("/", pageHandler.NotFound)

	// Build middleware chain (order matters: outermost first)
	var handler http.Handler = mux
	handler = authMiddleware.Authenticate(handler)
	handler = securityHeaders.Apply(handler)
	handler = requestLogger.Apply(handler)
	return handler, nil
}

const defaultAuthRateLimit int64 = 20

func resolveAuthRateLimit(cfg *config.Config, logger *logging.Logger, lookupEnv func(string) (string, bool)) int64 {
	limit := cfg.RateLimit.AuthAttempts
	if cfg.Server.Environment == "development" {
		limit = 100
		logger.Info("Using development auth rate limit", map[string]interface{}{"limit": limit})
	}
	if v, ok := lookupEnv("AUTH_RATE_LIMIT"); ok && v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed > 0 {
			limit = parsed
			logger.Info("Using auth rate limit from env", map[string]interface{}{"limit": limit})
		} else {
			limit = defaultAuthRateLimit
			logger.Warn("Invalid AUTH_RATE_LIMIT; using default", map[string]interface{}{
				"value": v,
				"limit": limit,
			})
		}
	}
	return limit
}
