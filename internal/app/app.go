package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dcizov/t3-starter-template/internal/config"
	"github.com/dcizov/t3-starter-template/internal/handler"
	"github.com/dcizov/t3-starter-template/internal/mail"
	"github.com/dcizov/t3-starter-template/internal/repository"
	"github.com/dcizov/t3-starter-template/internal/service"
	"github.com/dcizov/t3-starter-template/pkg/observability"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

func NewApp(infra Infrastructure, cfg *config.Config) *App {
	repos := repository.NewRepositories(infra.Postgres())

	mailer := mail.NewSMTPMailer(cfg.Mail, cfg.App.Name)
	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(infra)

	sessionService := service.NewSessionService(
		repos.Session,
		cfg.Session.CookieName,
		cfg.Session.Expiry.Duration,
		cfg.Env == "production",
	)

	twoFactorService := service.NewTwoFactorService(
		repos.TwoFactorToken,
		repos.TwoFactorConfirmation,
		mailer,
		cfg.Tokens.TwoFactorExpiry.Duration,
	)

	authService := service.NewAuthService(
		repos.User,
		repos.Account,
		repos.VerificationToken,
		repos.PasswordResetToken,
		twoFactorService,
		sessionService,
		mailer,
		infra.Logger(),
		cfg.Security.BCryptCost,
		cfg.Security.AdminEmail,
		cfg.App.BaseURL,
		cfg.Tokens.VerificationExpiry.Duration,
		cfg.Tokens.PasswordResetExpiry.Duration,
	)

	settingsService := service.NewSettingsService(repos.User, cfg.Security.BCryptCost)

	authHandler := handler.NewAuthHandler(authService, sessionService)
	settingsHandler := handler.NewSettingsHandler(settingsService)

	router := gin.Default()
	router.Use(otelgin.Middleware("t3-starter-template"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, authHandler, settingsHandler, sessionService, rateLimiter, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	settingsHandler *handler.SettingsHandler,
	sessionService service.SessionService,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	limited := handler.RateLimitMiddleware(
		rateLimiter,
		cfg.Security.RateLimitRequests,
		cfg.Security.RateLimitWindow.Duration,
		handler.IPBasedKey,
	)
	authed := handler.SessionAuthMiddleware(sessionService, cfg.Session.CookieName)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", limited, authHandler.Register)
			auth.POST("/login", limited, authHandler.Login)
			auth.POST("/verify-email", authHandler.VerifyEmail)
			auth.POST("/reset-password", limited, authHandler.ResetPassword)
			auth.POST("/set-new-password", limited, authHandler.SetNewPassword)
			auth.POST("/oauth/callback", authHandler.OAuthCallback)
			auth.POST("/logout", authed, authHandler.Logout)
			auth.GET("/me", authed, authHandler.GetMe)
		}

		users := api.Group("/users")
		{
			users.PATCH("/me/settings", authed, settingsHandler.UpdateSettings)
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
