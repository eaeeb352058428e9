// websocket.go

package game

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jacl-coder/RuneForge-Server/internal/auth"
	"github.com/jacl-coder/RuneForge-Server/internal/models"
	"github.com/jacl-coder/RuneForge-Server/internal/protocol"
)

const (
	// 写入超时时间
	writeWait = 10 * time.Second

	// 读取超时时间
	pongWait = 60 * time.Second

	// 发送 ping 的间隔时间
	pingPeriod = (pongWait * 9) / 10

	// 最大消息大小
	maxMessageSize = 64 * 1024

	// 单条指令的处理时限
	commandTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 允许所有跨域请求
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message 客户端指令
type Message struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Reply 服务端回复
type Reply struct {
	Type      string      `json:"type"`
	RequestID string      `json:"request_id,omitempty"`
	Success   bool        `json:"success"`
	Code      string      `json:"code,omitempty"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// handleWSConnection 处理WebSocket连接
func (s *GameServer) handleWSConnection(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("player_id")
	if playerID == "" {
		http.Error(w, "缺少玩家ID", http.StatusBadRequest)
		return
	}
	if s.verifier.Enabled() {
		if _, err := s.verifier.Verify(auth.BearerToken(r)); err != nil {
			http.Error(w, "未授权", http.StatusUnauthorized)
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket升级失败: %v", err)
		return
	}

	playerConn := &PlayerConnection{
		ID:         uuid.New().String(),
		PlayerID:   playerID,
		Binary:     r.URL.Query().Get("format") == "proto",
		LastActive: time.Now(),
		Send:       make(chan []byte, 64),
	}

	s.connMutex.Lock()
	s.connections[playerConn.ID] = playerConn
	s.connMutex.Unlock()

	log.Printf("玩家 %s 已连接", playerID)

	go s.readPump(conn, playerConn)
	go s.writePump(conn, playerConn)
}

// readPump 从WebSocket读取数据
func (s *GameServer) readPump(conn *websocket.Conn, player *PlayerConnection) {
	defer func() {
		s.closeConnection(player)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket错误: %v", err)
			}
			break
		}

		player.LastActive = time.Now()
		s.handleMessage(player, message)
	}
}

// writePump 向WebSocket写入数据
func (s *GameServer) writePump(conn *websocket.Conn, player *PlayerConnection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	messageType := websocket.TextMessage
	if player.Binary {
		messageType = websocket.BinaryMessage
	}

	for {
		select {
		case message, ok := <-player.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 通道已关闭
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(messageType, message); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// closeConnection 关闭玩家连接
func (s *GameServer) closeConnection(player *PlayerConnection) {
	s.connMutex.Lock()
	defer s.connMutex.Unlock()

	if _, ok := s.connections[player.ID]; !ok {
		return
	}
	close(player.Send)
	delete(s.connections, player.ID)

	log.Printf("玩家 %s 已断开连接", player.PlayerID)
}

// handleMessage 解码并处理一条指令
func (s *GameServer) handleMessage(player *PlayerConnection, data []byte) {
	var msg Message
	var err error
	if player.Binary {
		err = protocol.DecodeFrame(data, &msg)
	} else {
		err = json.Unmarshal(data, &msg)
	}
	if err != nil {
		log.Printf("解析消息失败: %v", err)
		s.sendMessage(player, Reply{Type: "error", Code: "BAD_REQUEST", Message: "无法解析的消息"})
		return
	}

	ctx, cancel := context.WithTimeout(s.baseCtx, commandTimeout)
	defer cancel()
	s.sendMessage(player, s.dispatch(ctx, player.PlayerID, msg))
}

// dispatch 执行指令并生成回复
func (s *GameServer) dispatch(ctx context.Context, playerID string, msg Message) Reply {
	var (
		battle *models.SoloBattle
		err    error
	)

	switch msg.Type {
	case "solo_start":
		var payload struct {
			Enemy string `json:"enemy"`
		}
		if err := decodePayload(msg.Payload, &payload); err != nil {
			return badRequest(msg)
		}
		battle, err = s.engine.StartSolo(ctx, playerID, payload.Enemy)
	case "solo_action":
		var payload struct {
			Action models.Action `json:"action"`
		}
		if err := decodePayload(msg.Payload, &payload); err != nil {
			return badRequest(msg)
		}
		battle, err = s.engine.SoloAction(ctx, playerID, payload.Action)
	case "solo_quit":
		battle, err = s.engine.QuitSolo(ctx, playerID)
	case "solo_status":
		battle, err = s.engine.SoloStatus(ctx, playerID)
	default:
		log.Printf("未知消息类型: %s", msg.Type)
		return Reply{Type: msg.Type, RequestID: msg.RequestID, Code: "UNKNOWN_TYPE", Message: "未知消息类型"}
	}

	if err != nil {
		resp := protocol.ErrorResponse(err)
		return Reply{Type: msg.Type, RequestID: msg.RequestID, Code: resp.Code, Message: resp.Message}
	}
	return Reply{Type: msg.Type, RequestID: msg.RequestID, Success: true, Data: battle}
}

func decodePayload(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func badRequest(msg Message) Reply {
	return Reply{Type: msg.Type, RequestID: msg.RequestID, Code: "BAD_REQUEST", Message: "无效的指令参数"}
}

// encode 按连接格式编码回复
func encode(player *PlayerConnection, msg interface{}) ([]byte, error) {
	if player.Binary {
		return protocol.EncodeFrame(msg)
	}
	return json.Marshal(msg)
}

// sendMessage 向玩家发送消息，发送队列满时断开连接
func (s *GameServer) sendMessage(player *PlayerConnection, msg interface{}) {
	data, err := encode(player, msg)
	if err != nil {
		log.Printf("序列化消息失败: %v", err)
		return
	}

	s.connMutex.RLock()
	_, open := s.connections[player.ID]
	full := false
	if open {
		select {
		case player.Send <- data:
		default:
			full = true
		}
	}
	s.connMutex.RUnlock()

	if full {
		log.Printf("玩家 %s 发送队列已满，断开连接", player.PlayerID)
		s.closeConnection(player)
	}
}

// broadcastMessage 向所有玩家广播消息
func (s *GameServer) broadcastMessage(msg interface{}) {
	s.connMutex.RLock()
	defer s.connMutex.RUnlock()

	for _, player := range s.connections {
		data, err := encode(player, msg)
		if err != nil {
			log.Printf("序列化消息失败: %v", err)
			continue
		}
		select {
		case player.Send <- data:
		default:
		}
	}
}
