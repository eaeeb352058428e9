// catalog.go

package gateway

import (
	"net/http"
	"strings"

	"github.com/jacl-coder/RuneForge-Server/internal/catalog"
	"github.com/jacl-coder/RuneForge-Server/internal/models"
	"github.com/jacl-coder/RuneForge-Server/internal/protocol"
)

// CatalogHandler 静态游戏数据查询
type CatalogHandler struct {
	catalog *catalog.Catalog
}

// NewCatalogHandler 创建图鉴处理器
func NewCatalogHandler(c *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

// RegisterHandlers 注册HTTP处理器
func (h *CatalogHandler) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/catalog", h.handleCatalog)
	mux.HandleFunc("/catalog/", h.handleCatalog)
}

// CatalogSummary 图鉴概览
type CatalogSummary struct {
	Items   []models.Item     `json:"items"`
	Sets    []models.SetBonus `json:"sets"`
	Enemies []models.Enemy    `json:"enemies"`
	Bosses  []models.Boss     `json:"bosses"`
}

func (h *CatalogHandler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		protocol.SendError(w, "仅支持GET方法", "METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed)
		return
	}

	section := strings.Trim(strings.TrimPrefix(r.URL.Path, "/catalog"), "/")
	switch {
	case section == "":
		protocol.SendSuccess(w, "查询成功", h.summary())
	case section == "enemies":
		protocol.SendSuccess(w, "查询成功", h.summary().Enemies)
	case section == "bosses":
		protocol.SendSuccess(w, "查询成功", h.summary().Bosses)
	case strings.HasPrefix(section, "items/"):
		name := h.catalog.ResolveAlias(strings.TrimPrefix(section, "items/"))
		item, ok := h.catalog.Item(name)
		if !ok {
			protocol.SendError(w, "物品不存在", "INVALID_TARGET", http.StatusNotFound)
			return
		}
		protocol.SendSuccess(w, "查询成功", item)
	default:
		protocol.SendError(w, "未知的接口", "NOT_FOUND", http.StatusNotFound)
	}
}

func (h *CatalogHandler) summary() CatalogSummary {
	s := CatalogSummary{Sets: h.catalog.Sets}
	for _, name := range h.catalog.ItemNames() {
		item, _ := h.catalog.Item(name)
		s.Items = append(s.Items, item)
	}
	for _, key := range h.catalog.EnemyKeys() {
		enemy, _ := h.catalog.Enemy(key)
		s.Enemies = append(s.Enemies, enemy)
	}
	for _, key := range h.catalog.BossKeys() {
		boss, _ := h.catalog.Boss(key)
		s.Bosses = append(s.Bosses, boss)
	}
	return s
}
