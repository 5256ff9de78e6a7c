package stream

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/z-bazi/backend/internal/handler/reading"
	"github.com/zhouzirui/z-bazi/backend/internal/service/pipeline"
	"github.com/zhouzirui/z-bazi/backend/pkg/utils"
)

// Handler delivers pipeline updates progressively over SSE or WebSocket
type Handler struct {
	runner   *pipeline.Runner
	upgrader websocket.Upgrader
}

// New creates a new stream handler
func New(runner *pipeline.Runner) *Handler {
	return &Handler{
		runner: runner,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// RegisterRoutes 注册流式解读路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/readings/stream", h.handleSSE)
	r.Get("/readings/ws", h.handleWebSocket)
}

// StreamResponse is the envelope of one progressive message
type StreamResponse struct {
	Event  string           `json:"event"`
	RunID  string           `json:"runId,omitempty"`
	Update *pipeline.Update `json:"update,omitempty"`
	Error  string           `json:"error,omitempty"`
}

func eventName(stage pipeline.Stage) string {
	if stage == pipeline.StageDone {
		return "end"
	}
	return string(stage)
}

// handleSSE streams a reading as Server-Sent Events. Closing the connection cancels the run.
func (h *Handler) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	inputs, err := reading.BirthRequestFromQuery(r.URL.Query()).Inputs()
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	logger := zerolog.Ctx(ctx).With().Str("component", "stream").Logger()

	utils.SetupSSEHeaders(w)
	if err := utils.SendSSEEvent(w, flusher, "start", StreamResponse{Event: "start"}); err != nil {
		logger.Warn().Err(err).Msg("failed to open sse stream")
		return
	}

	for update := range h.runner.Start(ctx, inputs) {
		u := update
		event := eventName(u.Stage)
		if err := utils.SendSSEEvent(w, flusher, event, StreamResponse{Event: event, RunID: u.RunID, Update: &u}); err != nil {
			logger.Warn().Err(err).Str("event", event).Msg("failed to write sse event")
		}
	}

	if ctx.Err() != nil {
		logger.Info().Msg("sse client disconnected before completion")
	}
}

// handleWebSocket reads one BirthRequest from the client and pushes updates back.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context()).With().Str("component", "stream").Logger()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(logger.WithContext(context.WithoutCancel(r.Context())))
	defer cancel()

	var payload reading.BirthRequest
	if err := conn.ReadJSON(&payload); err != nil {
		h.writeWS(conn, StreamResponse{Event: "error", Error: "invalid request body"})
		return
	}
	inputs, err := payload.Inputs()
	if err != nil {
		h.writeWS(conn, StreamResponse{Event: "error", Error: err.Error()})
		return
	}

	// The client closing its side abandons the run.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	if err := h.writeWS(conn, StreamResponse{Event: "start"}); err != nil {
		return
	}
	for update := range h.runner.Start(ctx, inputs) {
		u := update
		event := eventName(u.Stage)
		if err := h.writeWS(conn, StreamResponse{Event: event, RunID: u.RunID, Update: &u}); err != nil {
			logger.Warn().Err(err).Str("event", event).Msg("failed to write websocket message")
			cancel()
		}
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"),
		time.Now().Add(time.Second))
}

func (h *Handler) writeWS(conn *websocket.Conn, msg StreamResponse) error {
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(msg)
}
