// stats.go

package gateway

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/jacl-coder/RuneForge-Server/internal/protocol"
	"github.com/jacl-coder/RuneForge-Server/internal/storage"
)

// StatsHandler 排行榜处理器
type StatsHandler struct {
	leaderboard storage.Leaderboard
}

// NewStatsHandler 创建排行榜处理器
func NewStatsHandler(board storage.Leaderboard) *StatsHandler {
	return &StatsHandler{leaderboard: board}
}

// RegisterHandlers 注册HTTP处理器
func (h *StatsHandler) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/stats/leaderboard", h.handleLeaderboard)
	mux.HandleFunc("/stats/rank/", h.handleRank)
}

// handleLeaderboard 等级排行榜
func (h *StatsHandler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		protocol.SendError(w, "仅支持GET方法", "METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed)
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 100 {
			protocol.SendError(w, "limit 必须在 1 到 100 之间", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := h.leaderboard.Top(r.Context(), limit)
	if err != nil {
		log.Printf("查询排行榜失败: %v", err)
		protocol.SendError(w, "查询排行榜失败", "STORAGE_FAILURE", http.StatusServiceUnavailable)
		return
	}
	protocol.SendSuccess(w, "查询成功", entries)
}

// handleRank 单个玩家排名，未上榜时为 -1
func (h *StatsHandler) handleRank(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		protocol.SendError(w, "仅支持GET方法", "METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed)
		return
	}

	playerID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/stats/rank/"), "/")
	if playerID == "" {
		protocol.SendError(w, "缺少玩家ID", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	rank, err := h.leaderboard.Rank(r.Context(), playerID)
	if err != nil {
		log.Printf("查询玩家排名失败: %v", err)
		protocol.SendError(w, "查询玩家排名失败", "STORAGE_FAILURE", http.StatusServiceUnavailable)
		return
	}
	protocol.SendSuccess(w, "查询成功", map[string]interface{}{"player_id": playerID, "rank": rank})
}
