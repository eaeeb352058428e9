// player.go

package gateway

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jacl-coder/RuneForge-Server/internal/engine"
	"github.com/jacl-coder/RuneForge-Server/internal/models"
	"github.com/jacl-coder/RuneForge-Server/internal/protocol"
)

// PlayerHandler 玩家档案、资源与采集接口
type PlayerHandler struct {
	engine *engine.Engine
}

// NewPlayerHandler 创建玩家处理器
func NewPlayerHandler(eng *engine.Engine) *PlayerHandler {
	return &PlayerHandler{engine: eng}
}

// RegisterHandlers 注册HTTP处理器
func (h *PlayerHandler) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/players/", h.handlePlayer)
}

// PlayerRequest 玩家写操作请求体
type PlayerRequest struct {
	Item     string `json:"item"`
	Slot     string `json:"slot"`
	Amount   int64  `json:"amount"`
	Quantity int    `json:"quantity"`
}

// handlePlayer 按路径分发 /players/{id}/...
func (h *PlayerHandler) handlePlayer(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/players/"), "/")
	parts := strings.Split(path, "/")
	playerID := parts[0]
	if playerID == "" {
		protocol.SendError(w, "缺少玩家ID", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	action := ""
	if len(parts) > 1 {
		action = strings.Join(parts[1:], "/")
	}

	if r.Method == http.MethodGet {
		h.handleQuery(w, r, playerID, action)
		return
	}
	if r.Method != http.MethodPost {
		protocol.SendError(w, "仅支持GET和POST方法", "METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed)
		return
	}

	// 任务领取：quests/{key}/claim
	if len(parts) == 4 && parts[1] == "quests" && parts[3] == "claim" {
		reward, err := h.engine.ClaimQuest(r.Context(), playerID, parts[2])
		if err != nil {
			protocol.SendEngineError(w, err)
			return
		}
		protocol.SendSuccess(w, "领取成功", map[string]int64{"reward": reward})
		return
	}

	var req PlayerRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			protocol.SendError(w, "无效的请求数据", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
	}
	h.handleCommand(w, r, playerID, action, req)
}

// handleQuery 只读查询
func (h *PlayerHandler) handleQuery(w http.ResponseWriter, r *http.Request, playerID, action string) {
	ctx := r.Context()
	var (
		data interface{}
		err  error
	)

	switch action {
	case "":
		data, err = h.engine.Player(ctx, playerID)
	case "stats":
		data, err = h.engine.Stats(ctx, playerID)
	case "balance":
		var balance int64
		balance, err = h.engine.Balance(ctx, playerID)
		data = map[string]int64{"currency": balance}
	case "mana":
		data, err = h.engine.Mana(ctx, playerID)
	case "inventory":
		data, err = h.engine.Inventory(ctx, playerID)
	case "quests":
		data, err = h.engine.QuestProgress(ctx, playerID)
	default:
		protocol.SendError(w, "未知的接口", "NOT_FOUND", http.StatusNotFound)
		return
	}

	if err != nil {
		protocol.SendEngineError(w, err)
		return
	}
	protocol.SendSuccess(w, "查询成功", data)
}

// handleCommand 写操作
func (h *PlayerHandler) handleCommand(w http.ResponseWriter, r *http.Request, playerID, action string, req PlayerRequest) {
	ctx := r.Context()
	var (
		data interface{}
		err  error
	)

	switch action {
	case "credit":
		var balance int64
		balance, err = h.engine.Credit(ctx, playerID, req.Amount)
		data = map[string]int64{"currency": balance}
	case "debit":
		var balance int64
		balance, err = h.engine.Debit(ctx, playerID, req.Amount)
		data = map[string]int64{"currency": balance}
	case "mana/spend":
		var mana int
		mana, err = h.engine.SpendMana(ctx, playerID, int(req.Amount))
		data = map[string]int{"mana": mana}
	case "mana/restore":
		var mana int
		mana, err = h.engine.RestoreMana(ctx, playerID, int(req.Amount))
		data = map[string]int{"mana": mana}
	case "equip", "unequip":
		slot, ok := models.ParseSlot(req.Slot)
		if !ok {
			protocol.SendError(w, "无效的装备槽位", "INVALID_TARGET", http.StatusBadRequest)
			return
		}
		if action == "equip" {
			data, err = h.engine.Equip(ctx, playerID, slot, req.Item)
		} else {
			data, err = h.engine.Unequip(ctx, playerID, slot)
		}
	case "pursuit":
		var pursuit string
		pursuit, err = h.engine.SetPursuit(ctx, playerID, req.Item)
		data = map[string]string{"pursuit": pursuit}
	case "use":
		data, err = h.engine.UseItem(ctx, playerID, req.Item)
	case "grant":
		qty := req.Quantity
		if qty == 0 {
			qty = 1
		}
		data, err = h.engine.GrantItem(ctx, playerID, req.Item, qty)
	case "dig":
		data, err = h.engine.Dig(ctx, playerID)
	case "hunt":
		data, err = h.engine.Hunt(ctx, playerID)
	default:
		protocol.SendError(w, "未知的接口", "NOT_FOUND", http.StatusNotFound)
		return
	}

	if err != nil {
		protocol.SendEngineError(w, err)
		return
	}
	protocol.SendSuccess(w, "操作成功", data)
}
