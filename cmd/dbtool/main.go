// main.go

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jacl-coder/RuneForge-Server/config"
	"github.com/jacl-coder/RuneForge-Server/internal/app"
	"github.com/jacl-coder/RuneForge-Server/internal/auth"
	"github.com/jacl-coder/RuneForge-Server/pkg/db"
)

func main() {
	// 解析命令行参数
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	action := flag.String("action", "help", "操作类型: init, reset, seed, token, help")
	players := flag.String("players", "alice,bob,carol", "seed 操作创建的演示玩家，逗号分隔")
	dispatcher := flag.String("dispatcher", "discord-bot", "token 操作的调度方名称")
	ttl := flag.Duration("ttl", 24*time.Hour, "token 操作的令牌有效期")
	flag.Parse()

	if *action == "help" {
		showHelp()
		return
	}

	if err := config.LoadConfig(*configPath); err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	cfg := &config.GlobalConfig

	switch *action {
	case "init":
		initStorage(cfg)
	case "reset":
		resetStorage(cfg)
	case "seed":
		seedStorage(cfg, splitPlayers(*players))
	case "token":
		issueToken(cfg, *dispatcher, *ttl)
	default:
		log.Fatalf("未知操作: %s", *action)
	}
}

// showHelp 显示帮助信息
func showHelp() {
	log.Println("RuneForge 存储管理工具")
	log.Println("")
	log.Println("用法:")
	log.Println("  go run ./cmd/dbtool -action=<操作> [-config=<配置文件>]")
	log.Println("")
	log.Println("操作:")
	log.Println("  init   - 初始化存储（建表或建桶）")
	log.Println("  reset  - 删除键值表（仅 postgres 与 sqlite）")
	log.Println("  seed   - 创建带初始装备和金币的演示玩家")
	log.Println("  token  - 签发调度方令牌")
	log.Println("  help   - 显示此帮助信息")
	log.Println("")
	log.Println("示例:")
	log.Println("  go run ./cmd/dbtool -action=reset && go run ./cmd/dbtool -action=init")
	log.Println("  go run ./cmd/dbtool -action=seed -players=alice,bob")
	log.Println("  go run ./cmd/dbtool -action=token -dispatcher=discord-bot -ttl=720h")
}

// initStorage 打开一次存储，建表逻辑在打开时执行
func initStorage(cfg *config.Config) {
	a, err := app.Build(cfg)
	if err != nil {
		log.Fatalf("初始化存储失败: %v", err)
	}
	a.Close()
	log.Printf("存储初始化完成: %s", cfg.Storage.Driver)
}

// resetStorage 删除键值表
func resetStorage(cfg *config.Config) {
	log.Println("正在重置存储，这将删除所有玩家与团战记录")

	switch cfg.Storage.Driver {
	case "postgres":
		if err := db.InitPostgres(); err != nil {
			log.Fatalf("初始化PostgreSQL失败: %v", err)
		}
		defer db.Close()
		if err := db.DropAllTables(db.DB); err != nil {
			log.Fatalf("重置数据库失败: %v", err)
		}
	case "sqlite":
		conn, err := db.OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("打开SQLite失败: %v", err)
		}
		defer conn.Close()
		if err := db.DropAllTables(conn); err != nil {
			log.Fatalf("重置数据库失败: %v", err)
		}
	default:
		log.Fatalf("存储后端 %s 不支持重置", cfg.Storage.Driver)
	}
	log.Println("存储重置完成")
}

// seedStorage 创建演示玩家
func seedStorage(cfg *config.Config, ids []string) {
	a, err := app.Build(cfg)
	if err != nil {
		log.Fatalf("初始化存储失败: %v", err)
	}
	defer a.Close()

	if err := seedPlayers(context.Background(), a.Engine, ids); err != nil {
		log.Fatalf("创建演示玩家失败: %v", err)
	}
	log.Printf("已创建演示玩家: %s", strings.Join(ids, ", "))
}

// issueToken 签发调度方令牌并输出到标准输出
func issueToken(cfg *config.Config, dispatcher string, ttl time.Duration) {
	verifier := auth.NewVerifier(cfg.Auth.Secret, cfg.Auth.Issuer)
	token, err := verifier.Issue(dispatcher, ttl)
	if err != nil {
		log.Fatalf("签发令牌失败: %v", err)
	}
	fmt.Println(token)
}

func splitPlayers(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
