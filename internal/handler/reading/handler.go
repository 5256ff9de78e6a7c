package reading

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/z-bazi/backend/internal/analysis/narrative"
	"github.com/zhouzirui/z-bazi/backend/internal/service/pipeline"
	"github.com/zhouzirui/z-bazi/backend/pkg/utils"
)

// Handler 八字解读的HTTP处理器
type Handler struct {
	runner    *pipeline.Runner
	aiEnabled bool
}

// New 创建解读处理器
func New(runner *pipeline.Runner, aiEnabled bool) *Handler {
	return &Handler{
		runner:    runner,
		aiEnabled: aiEnabled,
	}
}

// RegisterRoutes 注册解读相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/readings", h.handleCreateReading)
	r.Post("/structure", h.handleStructure)
	r.Get("/healthz", h.handleHealth)
}

// handleCreateReading 同步执行完整流水线
func (h *Handler) handleCreateReading(w http.ResponseWriter, r *http.Request) {
	var payload BirthRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inputs, err := payload.Inputs()
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := h.runner.Run(r.Context(), inputs, nil)
	if result.Abandoned {
		zerolog.Ctx(r.Context()).Info().Str("run_id", result.RunID).Msg("client went away before reading completed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}

type structureRequest struct {
	Text string `json:"text"`
}

// handleStructure 将任意生成文本整理为分段结构
func (h *Handler) handleStructure(w http.ResponseWriter, r *http.Request) {
	var payload structureRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"text":     narrative.Sanitize(payload.Text),
		"sections": narrative.Structure(payload.Text),
	})
}

// handleHealth 返回服务状态
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"ai":     h.aiEnabled,
	})
}
