package match

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jacl-coder/RuneForge-Server/internal/engine"
	"github.com/jacl-coder/RuneForge-Server/internal/models"
	"github.com/jacl-coder/RuneForge-Server/internal/protocol"
)

// RaidHandler 团战处理器
type RaidHandler struct {
	engine *engine.Engine
}

// NewRaidHandler 创建团战处理器
func NewRaidHandler(eng *engine.Engine) *RaidHandler {
	return &RaidHandler{engine: eng}
}

// RegisterHandlers 注册HTTP处理器
func (h *RaidHandler) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/raids", h.handleRaids)
	mux.HandleFunc("/raids/", h.handleRaid)
}

// handleHealth 处理健康检查请求
func (h *RaidHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// raidRequest 团战请求
type raidRequest struct {
	PlayerID string        `json:"player_id"`
	Boss     string        `json:"boss"`
	Action   models.Action `json:"action"`
}

// handleRaids 创建团战或列出可加入的团战
func (h *RaidHandler) handleRaids(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		raids, err := h.engine.OpenRaids(r.Context())
		if err != nil {
			protocol.SendEngineError(w, err)
			return
		}
		protocol.SendSuccess(w, "查询成功", raids)
	case http.MethodPost:
		var req raidRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			protocol.SendError(w, "无效的请求数据", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		raid, err := h.engine.CreateRaid(r.Context(), req.PlayerID, req.Boss)
		if err != nil {
			protocol.SendEngineError(w, err)
			return
		}
		protocol.SendSuccess(w, "团战已创建", raid)
	default:
		protocol.SendError(w, "仅支持GET和POST方法", "METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed)
	}
}

// handleRaid 处理 /raids/{id}、/raids/{id}/join、/raids/{id}/action
func (h *RaidHandler) handleRaid(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/raids/"), "/"), "/")
	raidID := parts[0]
	if raidID == "" || len(parts) > 2 {
		protocol.SendError(w, "未知的接口", "NOT_FOUND", http.StatusNotFound)
		return
	}

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			protocol.SendError(w, "仅支持GET方法", "METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed)
			return
		}
		raid, err := h.engine.RaidStatus(r.Context(), raidID)
		if err != nil {
			protocol.SendEngineError(w, err)
			return
		}
		protocol.SendSuccess(w, "查询成功", raid)
		return
	}

	if r.Method != http.MethodPost {
		protocol.SendError(w, "仅支持POST方法", "METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed)
		return
	}
	var req raidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		protocol.SendError(w, "无效的请求数据", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	var (
		raid *models.Raid
		err  error
	)
	switch parts[1] {
	case "join":
		raid, err = h.engine.JoinRaid(r.Context(), raidID, req.PlayerID)
	case "action":
		raid, err = h.engine.RaidAction(r.Context(), raidID, req.PlayerID, req.Action)
	default:
		protocol.SendError(w, "未知的接口", "NOT_FOUND", http.StatusNotFound)
		return
	}
	if err != nil {
		protocol.SendEngineError(w, err)
		return
	}
	protocol.SendSuccess(w, "操作成功", raid)
}
