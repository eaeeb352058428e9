package game

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jacl-coder/RuneForge-Server/config"
	"github.com/jacl-coder/RuneForge-Server/internal/auth"
	"github.com/jacl-coder/RuneForge-Server/internal/catalog"
	"github.com/jacl-coder/RuneForge-Server/internal/engine"
	"github.com/jacl-coder/RuneForge-Server/internal/models"
	"github.com/jacl-coder/RuneForge-Server/internal/protocol"
	"github.com/jacl-coder/RuneForge-Server/internal/storage"
)

func newTestServer(t *testing.T, verifier *auth.Verifier) *GameServer {
	t.Helper()
	repo := storage.NewRepository(storage.NewMemoryKV())
	eng := engine.New(catalog.Default(), engine.Deps{
		Players:     repo,
		Solos:       repo,
		Raids:       repo,
		Locker:      storage.NewMemoryLocker(),
		Leaderboard: storage.NewMemoryLeaderboard(),
	}, engine.WithDice(engine.NewDice(11)))
	return NewGameServer(&config.Config{}, eng, verifier)
}

func msg(typ, payload string) Message {
	m := Message{Type: typ, RequestID: typ + "-1"}
	if payload != "" {
		m.Payload = json.RawMessage(payload)
	}
	return m
}

func TestDispatchSoloLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	reply := s.dispatch(ctx, "zoe", msg("solo_start", `{"enemy":"slime"}`))
	if !reply.Success || reply.RequestID != "solo_start-1" {
		t.Fatalf("start: %+v", reply)
	}
	battle, ok := reply.Data.(*models.SoloBattle)
	if !ok || battle.EnemyKey != "slime" || battle.WhoseTurn != models.SidePlayer {
		t.Fatalf("battle = %+v", reply.Data)
	}

	if reply = s.dispatch(ctx, "zoe", msg("solo_start", `{"enemy":"slime"}`)); reply.Code != "BATTLE_IN_PROGRESS" {
		t.Fatalf("second start: %+v", reply)
	}
	if reply = s.dispatch(ctx, "zoe", msg("solo_action", `{"action":"dance"}`)); reply.Code != "INVALID_ACTION" {
		t.Fatalf("bad action: %+v", reply)
	}
	if reply = s.dispatch(ctx, "zoe", msg("solo_status", "")); !reply.Success {
		t.Fatalf("status: %+v", reply)
	}
	if reply = s.dispatch(ctx, "zoe", msg("solo_quit", "")); !reply.Success {
		t.Fatalf("quit: %+v", reply)
	}
	if reply = s.dispatch(ctx, "zoe", msg("solo_status", "")); reply.Code != "NO_ACTIVE_BATTLE" {
		t.Fatalf("status after quit: %+v", reply)
	}
}

func TestDispatchRejectsBadInput(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	if reply := s.dispatch(ctx, "zoe", msg("solo_start", `["slime"]`)); reply.Code != "BAD_REQUEST" {
		t.Fatalf("bad payload: %+v", reply)
	}
	if reply := s.dispatch(ctx, "zoe", msg("solo_start", `{"enemy":"kraken"}`)); reply.Code != "INVALID_TARGET" {
		t.Fatalf("unknown enemy: %+v", reply)
	}
	if reply := s.dispatch(ctx, "zoe", msg("teleport", "")); reply.Code != "UNKNOWN_TYPE" || reply.Success {
		t.Fatalf("unknown type: %+v", reply)
	}
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestWebSocketJSONRoundTrip(t *testing.T) {
	s := newTestServer(t, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dial(t, srv, "player_id=yuki")
	if err := conn.WriteJSON(msg("solo_status", "")); err != nil {
		t.Fatalf("write: %v", err)
	}
	var reply Reply
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read: %v", err)
	}
	if reply.Success || reply.Code != "NO_ACTIVE_BATTLE" || reply.RequestID != "solo_status-1" {
		t.Fatalf("reply = %+v", reply)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read: %v", err)
	}
	if reply.Code != "BAD_REQUEST" {
		t.Fatalf("garbage reply = %+v", reply)
	}
}

func TestWebSocketProtoFrames(t *testing.T) {
	s := newTestServer(t, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dial(t, srv, "player_id=yuki&format=proto")
	frame, err := protocol.EncodeFrame(map[string]interface{}{
		"type":       "solo_start",
		"request_id": "p-1",
		"payload":    map[string]interface{}{"enemy": "slime"},
	})
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		t.Fatalf("write: %v", err)
	}

	kind, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if kind != websocket.BinaryMessage {
		t.Fatalf("message type = %d", kind)
	}
	var reply struct {
		Type      string            `json:"type"`
		RequestID string            `json:"request_id"`
		Success   bool              `json:"success"`
		Data      models.SoloBattle `json:"data"`
	}
	if err := protocol.DecodeFrame(data, &reply); err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if !reply.Success || reply.RequestID != "p-1" || reply.Data.EnemyKey != "slime" {
		t.Fatalf("reply = %+v", reply)
	}
}

func TestHandshakeChecks(t *testing.T) {
	verifier := auth.NewVerifier("secret", "runeforge")
	s := newTestServer(t, verifier)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ws")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing player = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/ws?player_id=yuki")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("missing token = %d", resp.StatusCode)
	}

	token, err := verifier.Issue("bot", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	dial(t, srv, "player_id=yuki&token="+token)
}
