package api

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"linkvault/internal/config"
	"linkvault/internal/http-server/handlers/errors"
	"linkvault/internal/http-server/handlers/health"
	"linkvault/internal/http-server/handlers/stats"
	"linkvault/internal/http-server/middleware/timeout"
	"linkvault/lib/sl"
)

// Server is the small status API that keeps hosting platforms happy and
// exposes the aggregate stats for dashboards. The bot itself talks to
// Telegram over long polling; nothing here serves end users.
type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

// Core is the read surface the API needs from the rest of the process.
type Core interface {
	stats.Core
}

func New(conf *config.Config, log *slog.Logger, core Core) error {
	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := chi.NewRouter()
	router.Use(timeout.Timeout(5))
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(render.SetContentType(render.ContentTypeJSON))

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	router.Get("/", health.Check(log))
	router.Get("/health", health.Check(log))
	router.Get("/stats", stats.Get(log, core))

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:      router,
		ErrorLog:     httpLog,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIp, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}
