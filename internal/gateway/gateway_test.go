package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jacl-coder/RuneForge-Server/config"
	"github.com/jacl-coder/RuneForge-Server/internal/auth"
	"github.com/jacl-coder/RuneForge-Server/internal/catalog"
	"github.com/jacl-coder/RuneForge-Server/internal/engine"
	"github.com/jacl-coder/RuneForge-Server/internal/protocol"
	"github.com/jacl-coder/RuneForge-Server/internal/storage"
)

func newTestGateway(t *testing.T, rateLimit int, verifier *auth.Verifier) (*Gateway, *storage.MemoryLeaderboard) {
	t.Helper()
	repo := storage.NewRepository(storage.NewMemoryKV())
	board := storage.NewMemoryLeaderboard()
	eng := engine.New(catalog.Default(), engine.Deps{
		Players:     repo,
		Solos:       repo,
		Raids:       repo,
		Locker:      storage.NewMemoryLocker(),
		Leaderboard: board,
	}, engine.WithDice(engine.NewDice(7)))

	cfg := &config.Config{}
	cfg.Server.MatchPort = 9
	cfg.Server.RateLimit = rateLimit
	return NewGateway(cfg, eng, board, verifier), board
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, protocol.Response) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp protocol.Response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s %s: decode: %v (%s)", method, target, err, rec.Body.String())
		}
	}
	return rec, resp
}

func TestLedgerRoutes(t *testing.T) {
	g, _ := newTestGateway(t, 0, nil)
	h := g.Handler()

	rec, resp := do(t, h, http.MethodPost, "/players/alice/credit", `{"amount":150}`)
	if rec.Code != http.StatusOK || !resp.Success {
		t.Fatalf("credit: %d %+v", rec.Code, resp)
	}

	rec, resp = do(t, h, http.MethodPost, "/players/alice/debit", `{"amount":200}`)
	if rec.Code != http.StatusConflict || resp.Code != "INSUFFICIENT_FUNDS" {
		t.Fatalf("overdraw: %d %+v", rec.Code, resp)
	}

	rec, resp = do(t, h, http.MethodPost, "/players/alice/credit", `{"amount":-5}`)
	if rec.Code != http.StatusBadRequest || resp.Code != "INVALID_AMOUNT" {
		t.Fatalf("negative credit: %d %+v", rec.Code, resp)
	}

	_, resp = do(t, h, http.MethodGet, "/players/alice/balance", "")
	data, _ := resp.Data.(map[string]interface{})
	if data["currency"] != float64(150) {
		t.Fatalf("balance = %+v", resp.Data)
	}
}

func TestEquipRoutes(t *testing.T) {
	g, _ := newTestGateway(t, 0, nil)
	h := g.Handler()

	rec, resp := do(t, h, http.MethodPost, "/players/bob/equip", `{"slot":"boots","item":"Iron Sword"}`)
	if rec.Code != http.StatusBadRequest || resp.Code != "INVALID_TARGET" {
		t.Fatalf("bad slot: %d %+v", rec.Code, resp)
	}

	rec, resp = do(t, h, http.MethodPost, "/players/bob/equip", `{"slot":"weapon","item":"Iron Sword"}`)
	if rec.Code != http.StatusConflict || resp.Code != "INSUFFICIENT_ITEM" {
		t.Fatalf("equip without item: %d %+v", rec.Code, resp)
	}

	if rec, resp = do(t, h, http.MethodPost, "/players/bob/grant", `{"item":"iron sword"}`); rec.Code != http.StatusOK {
		t.Fatalf("grant: %d %+v", rec.Code, resp)
	}
	if rec, resp = do(t, h, http.MethodPost, "/players/bob/equip", `{"slot":"weapon","item":"Iron Sword"}`); rec.Code != http.StatusOK {
		t.Fatalf("equip: %d %+v", rec.Code, resp)
	}

	_, resp = do(t, h, http.MethodGet, "/players/bob/stats", "")
	data, _ := resp.Data.(map[string]interface{})
	stats, _ := data["stats"].(map[string]interface{})
	if stats["attack"] != float64(5) {
		t.Fatalf("stats = %+v", resp.Data)
	}
}

func TestUnknownRoutes(t *testing.T) {
	g, _ := newTestGateway(t, 0, nil)
	h := g.Handler()

	if rec, _ := do(t, h, http.MethodGet, "/players/bob/wallet", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown query = %d", rec.Code)
	}
	if rec, _ := do(t, h, http.MethodDelete, "/players/bob", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("delete = %d", rec.Code)
	}
	if rec, _ := do(t, h, http.MethodPost, "/players/bob/grant", `{"item":"Unobtainium"}`); rec.Code != http.StatusNotFound {
		t.Errorf("grant unknown = %d", rec.Code)
	}
	if rec, _ := do(t, h, http.MethodPost, "/players/bob/quests/dig_novice/claim", ""); rec.Code != http.StatusConflict {
		t.Errorf("claim unfinished = %d", rec.Code)
	}
}

func TestCatalogResolvesAlias(t *testing.T) {
	g, _ := newTestGateway(t, 0, nil)
	rec, resp := do(t, g.Handler(), http.MethodGet, "/catalog/items/pup", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	item, _ := resp.Data.(map[string]interface{})
	if item["name"] != "Wolf Pup" {
		t.Fatalf("item = %+v", resp.Data)
	}

	if rec, _ := do(t, g.Handler(), http.MethodGet, "/catalog/items/nothing", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown item = %d", rec.Code)
	}
}

func TestLeaderboardRoutes(t *testing.T) {
	g, board := newTestGateway(t, 0, nil)
	ctx := context.Background()
	board.UpdatePlayer(ctx, "low", 2, 10)
	board.UpdatePlayer(ctx, "high", 5, 0)

	_, resp := do(t, g.Handler(), http.MethodGet, "/stats/leaderboard?limit=1", "")
	entries, _ := resp.Data.([]interface{})
	if len(entries) != 1 {
		t.Fatalf("entries = %+v", resp.Data)
	}
	if first, _ := entries[0].(map[string]interface{}); first["player_id"] != "high" {
		t.Fatalf("top = %+v", first)
	}

	if rec, _ := do(t, g.Handler(), http.MethodGet, "/stats/leaderboard?limit=0", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("limit=0 status = %d", rec.Code)
	}

	_, resp = do(t, g.Handler(), http.MethodGet, "/stats/rank/low", "")
	data, _ := resp.Data.(map[string]interface{})
	if data["rank"] != float64(2) {
		t.Fatalf("rank = %+v", resp.Data)
	}
}

func TestRateLimiter(t *testing.T) {
	g, _ := newTestGateway(t, 2, nil)
	h := g.Handler()

	for i := 0; i < 2; i++ {
		if rec, _ := do(t, h, http.MethodGet, "/players/carol/balance", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d = %d", i, rec.Code)
		}
	}
	rec, resp := do(t, h, http.MethodGet, "/players/carol/balance", "")
	if rec.Code != http.StatusTooManyRequests || resp.Code != "RATE_LIMIT_EXCEEDED" {
		t.Fatalf("third request = %d %+v", rec.Code, resp)
	}

	now := time.Now()
	g.limiter.now = func() time.Time { return now.Add(2 * time.Minute) }
	if rec, _ := do(t, h, http.MethodGet, "/players/carol/balance", ""); rec.Code != http.StatusOK {
		t.Fatalf("after window = %d", rec.Code)
	}

	g.limiter.now = func() time.Time { return now.Add(time.Hour) }
	g.limiter.evictIdle(10 * time.Minute)
	if len(g.limiter.clients) != 0 {
		t.Fatalf("idle clients kept: %d", len(g.limiter.clients))
	}
}

func TestVerifierGuardsRoutes(t *testing.T) {
	verifier := auth.NewVerifier("secret", "runeforge")
	g, _ := newTestGateway(t, 0, verifier)
	h := g.Handler()

	if rec, _ := do(t, h, http.MethodGet, "/players/dave", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token = %d", rec.Code)
	}
	if rec, _ := do(t, h, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Fatalf("health = %d", rec.Code)
	}

	token, err := verifier.Issue("discord-bot", time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if rec, _ := do(t, h, http.MethodGet, "/players/dave?token="+token, ""); rec.Code != http.StatusOK {
		t.Fatalf("with token = %d", rec.Code)
	}
}

func TestRaidRequestsAreForwarded(t *testing.T) {
	var gotPath string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusAccepted)
	}))
	defer backend.Close()

	g, _ := newTestGateway(t, 0, nil)
	target, err := url.Parse(backend.URL)
	if err != nil {
		t.Fatal(err)
	}
	g.raidURL = target

	rec, _ := do(t, g.Handler(), http.MethodPost, "/raids/abc/join", `{"player_id":"erin"}`)
	if rec.Code != http.StatusAccepted || gotPath != "/raids/abc/join" {
		t.Fatalf("forward: status %d path %q", rec.Code, gotPath)
	}
}
