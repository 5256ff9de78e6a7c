package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/z-bazi/backend/internal/handler/reading"
	"github.com/zhouzirui/z-bazi/backend/internal/handler/stream"
	middlewarePkg "github.com/zhouzirui/z-bazi/backend/internal/middleware"
	"github.com/zhouzirui/z-bazi/backend/internal/service/pipeline"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(logger zerolog.Logger, runner *pipeline.Runner, aiEnabled bool) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.Logger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	readingHandler := reading.New(runner, aiEnabled)
	streamHandler := stream.New(runner)

	r.Route("/api", func(api chi.Router) {
		readingHandler.RegisterRoutes(api)
		streamHandler.RegisterRoutes(api)
	})

	return r
}
