// service.go

package match

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jacl-coder/RuneForge-Server/config"
	"github.com/jacl-coder/RuneForge-Server/internal/auth"
	"github.com/jacl-coder/RuneForge-Server/internal/engine"
)

// RaidService 团战服务：HTTP接口与定时清扫
type RaidService struct {
	config   *config.Config
	engine   *engine.Engine
	verifier *auth.Verifier
	handler  *RaidHandler

	httpServer *http.Server
}

// NewRaidService 创建团战服务
func NewRaidService(cfg *config.Config, eng *engine.Engine, verifier *auth.Verifier) *RaidService {
	return &RaidService{
		config:   cfg,
		engine:   eng,
		verifier: verifier,
		handler:  NewRaidHandler(eng),
	}
}

// Handler 团战服务HTTP处理器
func (s *RaidService) Handler() http.Handler {
	mux := http.NewServeMux()
	s.handler.RegisterHandlers(mux)
	if s.verifier != nil {
		return s.verifier.Middleware(mux)
	}
	return mux
}

// Run 启动团战服务并阻塞到 ctx 取消
func (s *RaidService) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Server.MatchPort),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("团战服务HTTP服务器启动，监听端口: %d", s.config.Server.MatchPort)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("团战服务HTTP服务器错误: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.sweepLoop(ctx)
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	log.Println("团战服务已停止")
	return err
}

// sweepLoop 定时推进过期团战：取消或开战、补发结算、清理旧记录
func (s *RaidService) sweepLoop(ctx context.Context) {
	interval := s.config.Server.SweepInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.SweepOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// SweepOnce 执行一次清扫并记录结果
func (s *RaidService) SweepOnce(ctx context.Context) engine.SweepReport {
	report, err := s.engine.Sweep(ctx)
	if err != nil {
		log.Printf("团战清扫失败: %v", err)
	}
	if report.Cancelled+report.Activated+report.Settled+report.Cleaned+report.Failed > 0 {
		log.Printf("团战清扫: 扫描=%d 取消=%d 开战=%d 结算=%d 清理=%d 失败=%d",
			report.Scanned, report.Cancelled, report.Activated, report.Settled, report.Cleaned, report.Failed)
	}
	return report
}
