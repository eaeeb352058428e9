// server.go

package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/jacl-coder/RuneForge-Server/config"
	"github.com/jacl-coder/RuneForge-Server/internal/auth"
	"github.com/jacl-coder/RuneForge-Server/internal/engine"
)

// GameServer 单人战斗WebSocket服务器
type GameServer struct {
	config   *config.Config
	engine   *engine.Engine
	verifier *auth.Verifier

	httpServer  *http.Server
	connections map[string]*PlayerConnection
	connMutex   sync.RWMutex

	// baseCtx 派生每条指令的上下文，服务关闭时取消
	baseCtx context.Context
}

// PlayerConnection 玩家连接
type PlayerConnection struct {
	ID         string
	PlayerID   string
	Binary     bool
	LastActive time.Time

	// 通信通道
	Send chan []byte
}

// NewGameServer 创建新的游戏服务器
func NewGameServer(cfg *config.Config, eng *engine.Engine, verifier *auth.Verifier) *GameServer {
	return &GameServer{
		config:      cfg,
		engine:      eng,
		verifier:    verifier,
		connections: make(map[string]*PlayerConnection),
		baseCtx:     context.Background(),
	}
}

// Run 启动游戏服务器并阻塞到 ctx 取消
func (s *GameServer) Run(ctx context.Context) error {
	s.baseCtx = ctx
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Server.GamePort),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("游戏服务器启动，监听端口: %d", s.config.Server.GamePort)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("游戏服务器HTTP服务器错误: %w", err)
	case <-ctx.Done():
	}

	s.broadcastMessage(Reply{Type: "server_shutdown", Success: true, Message: "服务器即将关闭"})
	s.closeAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP服务器关闭错误: %w", err)
	}
	log.Println("游戏服务器已停止")
	return nil
}

// Handler 创建HTTP处理器
func (s *GameServer) Handler() http.Handler {
	mux := http.NewServeMux()

	// WebSocket 连接端点
	mux.HandleFunc("/ws", s.handleWSConnection)

	// 健康检查端点
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return mux
}

// ConnectionCount 当前连接数
func (s *GameServer) ConnectionCount() int {
	s.connMutex.RLock()
	defer s.connMutex.RUnlock()
	return len(s.connections)
}

// closeAll 关闭所有连接
func (s *GameServer) closeAll() {
	s.connMutex.Lock()
	defer s.connMutex.Unlock()
	for id, conn := range s.connections {
		close(conn.Send)
		delete(s.connections, id)
	}
}
