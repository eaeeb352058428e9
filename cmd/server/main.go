// main.go

package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/jacl-coder/RuneForge-Server/config"
	"github.com/jacl-coder/RuneForge-Server/internal/app"
	"github.com/jacl-coder/RuneForge-Server/internal/game"
	"github.com/jacl-coder/RuneForge-Server/internal/gateway"
	"github.com/jacl-coder/RuneForge-Server/internal/match"
)

func main() {
	// 解析命令行参数
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	serviceType := flag.String("service", "all", "服务类型 (game, match, gateway, all)")
	flag.Parse()

	if err := config.LoadConfig(*configPath); err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	cfg := &config.GlobalConfig

	a, err := app.Build(cfg)
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	runGame := func() {
		server := game.NewGameServer(cfg, a.Engine, a.Verifier)
		g.Go(func() error { return server.Run(ctx) })
	}
	runMatch := func() {
		service := match.NewRaidService(cfg, a.Engine, a.Verifier)
		g.Go(func() error { return service.Run(ctx) })
	}
	runGateway := func() {
		gw := gateway.NewGateway(cfg, a.Engine, a.Stores.Leaderboard, a.Verifier)
		g.Go(func() error { return gw.Run(ctx) })
	}

	switch *serviceType {
	case "game":
		runGame()
	case "match":
		runMatch()
	case "gateway":
		runGateway()
	case "all":
		runGame()
		runMatch()
		runGateway()
	default:
		log.Fatalf("未知的服务类型: %s", *serviceType)
	}

	if err := g.Wait(); err != nil {
		log.Printf("服务异常退出: %v", err)
		return
	}
	log.Println("服务器已安全关闭")
}
