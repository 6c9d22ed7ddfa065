// Package health отдаёт HTTP-пробу живости для оркестратора. GET /healthz отвечает 200,
// пока бот подключён к шлюзу Discord, иначе 503.
package health

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ozfortress/bookerbot/internal/logger"
)

// Checker сообщает, готов ли сервис (например discord.Client.IsConnected).
type Checker func() bool

type Handler struct {
	ready   Checker
	started time.Time
}

func NewHandler(ready Checker) *Handler {
	return &Handler{ready: ready, started: time.Now()}
}

// GET /healthz
func (h *Handler) Check(c *gin.Context) {
	connected := h.ready == nil || h.ready()
	status, code := "healthy", http.StatusOK
	if !connected {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":            status,
		"service":           "bookerbot",
		"gateway_connected": connected,
		"timestamp":         time.Now(),
		"uptime":            time.Since(h.started).Round(time.Second).String(),
	})
}

func Router(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/healthz", h.Check)
	return r
}

type Server struct {
	srv *http.Server
}

func NewServer(addr string, h *Handler) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           Router(h),
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// Start слушает в фоне. Ошибка запуска (занят порт и т.п.) только логируется:
// бот работает и без пробы.
func (s *Server) Start() {
	go func() {
		logger.Infof("health endpoint listening on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("health endpoint")
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
