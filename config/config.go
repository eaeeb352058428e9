// config.go

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 服务器配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

// ServerConfig 服务器基本配置
type ServerConfig struct {
	GamePort      int           `mapstructure:"game_port"`
	MatchPort     int           `mapstructure:"match_port"`
	GatewayPort   int           `mapstructure:"gateway_port"`
	Debug         bool          `mapstructure:"debug"`
	LogLevel      string        `mapstructure:"log_level"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	RateLimit     int           `mapstructure:"rate_limit"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`

	// DialTimeout 同时用作启动时 Ping 的超时
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

// StorageConfig 存储后端配置
type StorageConfig struct {
	// Driver 玩家与团战记录的持久化后端: postgres, sqlite, bolt, redis, memory
	Driver string `mapstructure:"driver"`
	// SessionDriver 单人战斗会话与键锁的后端: memory, redis
	SessionDriver string `mapstructure:"session_driver"`
	SQLitePath    string `mapstructure:"sqlite_path"`
	BoltPath      string `mapstructure:"bolt_path"`
}

// EngineConfig 游戏规则参数
type EngineConfig struct {
	RaidEntryFee     int64         `mapstructure:"raid_entry_fee"`
	RaidJoinWindow   time.Duration `mapstructure:"raid_join_window"`
	RaidCapacity     int           `mapstructure:"raid_capacity"`
	RaidMinPlayers   int           `mapstructure:"raid_min_players"`
	RaidDefendBonus  int           `mapstructure:"raid_defend_bonus"`
	RaidRetention    time.Duration `mapstructure:"raid_retention"`
	ExpMultiplier    int64         `mapstructure:"exp_multiplier"`
	HealAmount       int           `mapstructure:"heal_amount"`
	ManaPotionAmount int           `mapstructure:"mana_potion_amount"`
	DigManaCost      int           `mapstructure:"dig_mana_cost"`
	HuntManaCost     int           `mapstructure:"hunt_mana_cost"`
	LockTimeout      time.Duration `mapstructure:"lock_timeout"`
	RandomSeed       int64         `mapstructure:"random_seed"`
}

// AuthConfig 调度方令牌配置
type AuthConfig struct {
	// Secret 为空时不校验调度方令牌
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

var (
	// GlobalConfig 全局配置实例
	GlobalConfig Config
)

// setDefaults 设置默认配置
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.game_port", 8081)
	v.SetDefault("server.match_port", 8082)
	v.SetDefault("server.gateway_port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.sweep_interval", 5*time.Second)
	v.SetDefault("server.rate_limit", 120)

	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("redis.dial_timeout", 5*time.Second)

	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.session_driver", "memory")
	v.SetDefault("storage.sqlite_path", "data/runeforge.db")
	v.SetDefault("storage.bolt_path", "data/runeforge.bolt")

	v.SetDefault("engine.raid_entry_fee", 100)
	v.SetDefault("engine.raid_join_window", 30*time.Second)
	v.SetDefault("engine.raid_capacity", 4)
	v.SetDefault("engine.raid_min_players", 2)
	v.SetDefault("engine.raid_defend_bonus", 10)
	v.SetDefault("engine.raid_retention", 2*time.Minute)
	v.SetDefault("engine.exp_multiplier", 3)
	v.SetDefault("engine.heal_amount", 5)
	v.SetDefault("engine.mana_potion_amount", 30)
	v.SetDefault("engine.dig_mana_cost", 5)
	v.SetDefault("engine.hunt_mana_cost", 10)
	v.SetDefault("engine.lock_timeout", 3*time.Second)

	v.SetDefault("auth.issuer", "runeforge-dispatcher")
}

// LoadConfig 从文件加载配置
func LoadConfig(configPath string) error {
	cfg, err := Load(configPath)
	if err != nil {
		return err
	}
	GlobalConfig = *cfg
	return nil
}

// Load 读取配置文件并返回新的配置实例
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath)
	v.SetEnvPrefix("RUNEFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("无法读取配置文件: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("无法解析配置文件: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "postgres", "sqlite", "bolt", "redis", "memory":
	default:
		return fmt.Errorf("未知的存储后端: %s", c.Storage.Driver)
	}
	switch c.Storage.SessionDriver {
	case "memory", "redis":
	default:
		return fmt.Errorf("未知的会话后端: %s", c.Storage.SessionDriver)
	}
	if c.Engine.RaidCapacity < c.Engine.RaidMinPlayers {
		return fmt.Errorf("团战人数上限 %d 小于开战人数 %d", c.Engine.RaidCapacity, c.Engine.RaidMinPlayers)
	}
	return nil
}

// NeedsRedis 是否需要建立Redis连接
func (c *Config) NeedsRedis() bool {
	return c.Storage.Driver == "redis" || c.Storage.SessionDriver == "redis"
}

// GetDSN 获取PostgreSQL连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// GetRedisAddr 获取Redis连接地址
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
