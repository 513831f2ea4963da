package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`    // 服务器配置
	Postgres  PostgresConfig  `mapstructure:"postgres"`  // 文档库（球队战绩/用户）
	Cassandra CassandraConfig `mapstructure:"cassandra"` // 比赛时序库
	Dgraph    DgraphConfig    `mapstructure:"dgraph"`    // 关系图库
	Live      LiveConfig      `mapstructure:"live"`      // 实时数据源
	Sync      SyncConfig      `mapstructure:"sync"`      // 定时同步
	Analytics AnalyticsConfig `mapstructure:"analytics"` // 统计口径
	Cache     CacheConfig     `mapstructure:"cache"`     // 数据源响应缓存
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// PostgresConfig PostgreSQL配置
type PostgresConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN（URL形式）
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
	LogSQL          bool          `mapstructure:"log_sql"`           // 是否打印SQL
}

// CassandraConfig Cassandra配置
type CassandraConfig struct {
	Hosts             []string      `mapstructure:"hosts"`
	Keyspace          string        `mapstructure:"keyspace"`
	ReplicationFactor int           `mapstructure:"replication_factor"`
	Consistency       string        `mapstructure:"consistency"`
	Username          string        `mapstructure:"username"`
	Password          string        `mapstructure:"password"`
	Timeout           time.Duration `mapstructure:"timeout"`
	ConnectRetries    int           `mapstructure:"connect_retries"`     // 启动时最大连接次数
	ConnectRetryDelay time.Duration `mapstructure:"connect_retry_delay"` // 每次重试的固定间隔
}

// DgraphConfig Dgraph配置
type DgraphConfig struct {
	Addr string `mapstructure:"addr"` // gRPC地址，如 localhost:9080
}

// LiveConfig 实时数据源配置
type LiveConfig struct {
	Source   string `mapstructure:"source"`    // 数据源：serpapi/file
	BaseURL  string `mapstructure:"base_url"`  // API基础地址
	APIKey   string `mapstructure:"api_key"`   // SerpAPI密钥（建议放.env）
	League   string `mapstructure:"league"`    // 查询用的联赛名，如 NBA
	Timeout  int    `mapstructure:"timeout"`   // 请求超时（秒）
	Proxy    string `mapstructure:"proxy"`     // 代理地址
	FilePath string `mapstructure:"file_path"` // file 数据源的 JSON 文件
}

// SyncConfig 同步调度配置
type SyncConfig struct {
	Enabled  bool          `mapstructure:"enabled"`  // 是否开启定时同步
	Interval time.Duration `mapstructure:"interval"` // 同步间隔
}

// AnalyticsConfig 统计配置
type AnalyticsConfig struct {
	TieRule string `mapstructure:"tie_rule"` // 平局计法：team2（历史口径）/ignore
}

// CacheConfig 数据源响应缓存配置
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Dir     string        `mapstructure:"dir"` // 为空时使用内存模式
	TTL     time.Duration `mapstructure:"ttl"`
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	// 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）
	return LoadConfigFrom("./config")
}

// LoadConfigFrom 从指定目录读取 config.yaml
func LoadConfigFrom(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	v.SetTypeByDefaultValue(true)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("postgres.max_open_conns", 20)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime", time.Hour)
	v.SetDefault("cassandra.hosts", []string{"localhost"})
	v.SetDefault("cassandra.keyspace", "sports_analytics")
	v.SetDefault("cassandra.replication_factor", 1)
	v.SetDefault("cassandra.consistency", "quorum")
	v.SetDefault("cassandra.timeout", 10*time.Second)
	v.SetDefault("cassandra.connect_retries", 5)
	v.SetDefault("cassandra.connect_retry_delay", 5*time.Second)
	v.SetDefault("dgraph.addr", "localhost:9080")
	v.SetDefault("live.source", "serpapi")
	v.SetDefault("live.base_url", "https://serpapi.com/search.json")
	v.SetDefault("live.league", "NBA")
	v.SetDefault("live.timeout", 15)
	v.SetDefault("sync.interval", 15*time.Minute)
	v.SetDefault("analytics.tie_rule", "team2")
	v.SetDefault("cache.ttl", 5*time.Minute)
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("SERPAPI_API_KEY"); v != "" {
		cfg.Live.APIKey = v
	}
	if v := os.Getenv("LIVE_PROXY"); v != "" {
		cfg.Live.Proxy = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("CASSANDRA_HOSTS"); v != "" {
		cfg.Cassandra.Hosts = strings.Split(v, ",")
	}
	if v := os.Getenv("CASSANDRA_PASSWORD"); v != "" {
		cfg.Cassandra.Password = v
	}
	if v := os.Getenv("DGRAPH_ADDR"); v != "" {
		cfg.Dgraph.Addr = v
	}
}

// Validate 校验启动必需的配置项
func (c *Config) Validate() error {
	if len(c.Cassandra.Hosts) == 0 {
		return fmt.Errorf("cassandra.hosts 不能为空")
	}
	if c.Cassandra.ConnectRetries <= 0 {
		return fmt.Errorf("cassandra.connect_retries 必须大于0")
	}
	switch c.Analytics.TieRule {
	case "team2", "ignore":
	default:
		return fmt.Errorf("analytics.tie_rule 不支持: %q", c.Analytics.TieRule)
	}
	return nil
}
