package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Freeeeeet/salon_bot/internal/model"
)

const shutdownTimeout = 10 * time.Second

// Options настройки HTTP сервера Mini App
type Options struct {
	Addr              string
	BotToken          string
	JWTSecret         string
	TokenTTL          time.Duration
	CORSOrigins       []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Server HTTP API для Telegram Mini App
type Server struct {
	engine   *gin.Engine
	http     *http.Server
	svc      Services
	tokens   *TokenIssuer
	botToken string
	now      func() time.Time
	logger   *zap.Logger
}

func NewServer(opts Options, svc Services, logger *zap.Logger) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery(), RequestLogger(logger))

	if len(opts.CORSOrigins) > 0 {
		engine.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if opts.RateLimitRequests > 0 {
		engine.Use(RateLimit(opts.RateLimitRequests, opts.RateLimitWindow))
	}

	s := &Server{
		engine:   engine,
		svc:      svc,
		tokens:   NewTokenIssuer(opts.JWTSecret, opts.TokenTTL),
		botToken: opts.BotToken,
		now:      time.Now,
		logger:   logger,
	}
	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.routes()
	return s
}

// Handler корневой обработчик (для тестов и встраивания)
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run слушает адрес до отмены контекста, затем мягко останавливается
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Mini App API listening", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("Mini App API stopped")
	return nil
}

func (s *Server) routes() {
	r := s.engine

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.POST("/auth/telegram", s.authTelegram)

	client := api.Group("")
	client.Use(AuthRequired(s.tokens))
	{
		client.GET("/me", s.getMe)
		client.GET("/services", s.listServices)
		client.GET("/calendar", s.getCalendar)
		client.GET("/slots", s.getSlots)

		client.POST("/appointments", s.createAppointment)
		client.GET("/appointments", s.listAppointments)
		client.POST("/appointments/:id/cancel", s.cancelAppointment)

		client.GET("/review-prompt", s.getReviewPrompt)
		client.POST("/review-prompt/:id/shown", s.markPromptShown)
		client.POST("/review-prompt/:id/defer", s.deferPrompt)
		client.POST("/review-prompt/:id/dismiss", s.dismissPrompt)
		client.POST("/reviews", s.submitReview)

		client.PUT("/profile/phone", s.updatePhone)
	}

	master := api.Group("/master")
	master.Use(AuthRequired(s.tokens), RequireMaster())
	{
		master.GET("/appointments", s.masterAppointments)
		master.POST("/appointments/:id/confirm", s.confirmAppointment)
		master.POST("/appointments/:id/complete", s.completeAppointment)
		master.POST("/appointments/:id/cancel", s.masterCancelAppointment)

		master.GET("/reviews", s.listReviews)
		master.POST("/reviews/read-all", s.markAllReviewsRead)
		master.POST("/reviews/:id/read", s.markReviewRead)
		master.PUT("/reviews/:id/reply", s.replyReview)

		master.GET("/settings", s.getSettings)
		master.PUT("/settings", s.putSettings)
		master.GET("/overrides", s.listOverrides)
		master.PUT("/overrides/:date", s.putOverride)
		master.DELETE("/overrides/:date", s.deleteOverride)

		master.GET("/services", s.masterServices)
		master.POST("/services", s.createService)
		master.PUT("/services/:id", s.updateService)
		master.POST("/services/:id/toggle", s.toggleService)
	}
}

// currentUser пользователь из токена
func (s *Server) currentUser(c *gin.Context) (*model.User, bool) {
	user, err := s.svc.Users.GetByID(c.Request.Context(), c.GetInt64(ctxUserID))
	if err != nil {
		s.respondError(c, err)
		return nil, false
	}
	if user == nil {
		abort(c, http.StatusUnauthorized, "user_not_found", "Пользователь не найден, откройте Mini App заново")
		return nil, false
	}
	return user, true
}
