// gateway.go

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/jacl-coder/RuneForge-Server/config"
	"github.com/jacl-coder/RuneForge-Server/internal/auth"
	"github.com/jacl-coder/RuneForge-Server/internal/engine"
	"github.com/jacl-coder/RuneForge-Server/internal/storage"
)

// Gateway API网关，提供玩家与排行榜接口，团战请求转发到团战服务
type Gateway struct {
	config      *config.Config
	engine      *engine.Engine
	leaderboard storage.Leaderboard
	verifier    *auth.Verifier
	raidURL     *url.URL
	limiter     *RateLimiter
	httpServer  *http.Server
}

// NewGateway 创建新的网关
func NewGateway(cfg *config.Config, eng *engine.Engine, board storage.Leaderboard, verifier *auth.Verifier) *Gateway {
	raidURL := &url.URL{Scheme: "http", Host: fmt.Sprintf("localhost:%d", cfg.Server.MatchPort)}
	return &Gateway{
		config:      cfg,
		engine:      eng,
		leaderboard: board,
		verifier:    verifier,
		raidURL:     raidURL,
		limiter:     NewRateLimiter(cfg.Server.RateLimit),
	}
}

// Run 启动网关并阻塞到 ctx 取消
func (g *Gateway) Run(ctx context.Context) error {
	g.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", g.config.Server.GatewayPort),
		Handler:           g.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go g.limiter.Cleanup(ctx)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("API网关启动，监听端口: %d", g.config.Server.GatewayPort)
		errCh <- g.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("API网关HTTP服务器错误: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := g.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("关闭API网关失败: %w", err)
	}
	log.Println("API网关已停止")
	return nil
}

// Handler 创建HTTP处理器
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()

	NewPlayerHandler(g.engine).RegisterHandlers(mux)
	NewStatsHandler(g.leaderboard).RegisterHandlers(mux)
	NewCatalogHandler(g.engine.Catalog()).RegisterHandlers(mux)

	// 团战接口由团战服务处理
	mux.HandleFunc("/raids", g.forwardRequest)
	mux.HandleFunc("/raids/", g.forwardRequest)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return g.applyMiddleware(mux)
}

// applyMiddleware 应用中间件
func (g *Gateway) applyMiddleware(handler http.Handler) http.Handler {
	// 从内到外包装，日志在最外层
	if g.verifier != nil {
		handler = g.verifier.Middleware(handler)
	}
	handler = g.limiter.Middleware(handler)
	handler = NewLoggingMiddleware().Middleware(handler)
	return handler
}

// forwardRequest 转发请求到团战服务
func (g *Gateway) forwardRequest(w http.ResponseWriter, r *http.Request) {
	proxy := httputil.NewSingleHostReverseProxy(g.raidURL)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Printf("转发团战请求失败: %v", err)
		http.Error(w, "服务不可用", http.StatusServiceUnavailable)
	}

	r.Header.Set("X-Forwarded-Host", r.Host)
	r.Header.Set("X-Origin-Host", g.raidURL.Host)
	r.Host = g.raidURL.Host

	proxy.ServeHTTP(w, r)
}
