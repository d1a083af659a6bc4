package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config 汇总新闻摘要服务的全部运行参数，全部来源于环境变量（可选 .env 文件）
type Config struct {
	AppPort  string
	LogLevel string

	NewsAPIKey  string
	CurrentsKey string
	GuardianKey string
	FeedURLs    []string

	// 各数据源的基础地址，测试或自建镜像时可覆盖
	NewsAPIBaseURL  string
	CurrentsBaseURL string
	GuardianBaseURL string

	FetchTimeout time.Duration

	DBDriver    string
	DatabaseDSN string
	RedisAddr   string

	// 为空时 cmd/api 不启动定时采集，由外部调度器触发 cmd/collect
	CronSpec string

	Notify NotifyConfig
}

// NotifyConfig 入库成功后的事件推送配置；Provider 为空表示关闭
type NotifyConfig struct {
	Provider           string
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	SNSTopicARN        string
	SQSQueueURL        string
	GCPProjectID       string
	PubSubTopic        string
	GCPCredentialsFile string
}

// Load 读取 .env（不存在则忽略）与环境变量
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		AppPort:         v.GetString("APP_PORT"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		NewsAPIKey:      strings.TrimSpace(v.GetString("NEWSAPI_KEY")),
		CurrentsKey:     strings.TrimSpace(v.GetString("CURRENTS_KEY")),
		GuardianKey:     strings.TrimSpace(v.GetString("GUARDIAN_KEY")),
		FeedURLs:        splitList(v.GetString("FEED_URLS")),
		NewsAPIBaseURL:  v.GetString("NEWSAPI_BASE_URL"),
		CurrentsBaseURL: v.GetString("CURRENTS_BASE_URL"),
		GuardianBaseURL: v.GetString("GUARDIAN_BASE_URL"),
		FetchTimeout:    v.GetDuration("FETCH_TIMEOUT"),
		DBDriver:        strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		CronSpec:        strings.TrimSpace(v.GetString("CRON_SPEC")),
		Notify: NotifyConfig{
			Provider:           strings.ToLower(strings.TrimSpace(v.GetString("NOTIFY_PROVIDER"))),
			AWSRegion:          v.GetString("AWS_REGION"),
			AWSAccessKeyID:     v.GetString("NOTIFY_AWS_ACCESS_KEY_ID"),
			AWSSecretAccessKey: v.GetString("NOTIFY_AWS_SECRET_ACCESS_KEY"),
			SNSTopicARN:        v.GetString("NOTIFY_SNS_TOPIC_ARN"),
			SQSQueueURL:        v.GetString("NOTIFY_SQS_QUEUE_URL"),
			GCPProjectID:       v.GetString("GCP_PROJECT_ID"),
			PubSubTopic:        v.GetString("NOTIFY_PUBSUB_TOPIC"),
			GCPCredentialsFile: v.GetString("GCP_CREDENTIALS_FILE"),
		},
	}

	cfg.DatabaseDSN = v.GetString("DATABASE_DSN")
	if cfg.DatabaseDSN == "" {
		// 兼容旧部署使用的 SQLITE_PATH
		cfg.DatabaseDSN = v.GetString("SQLITE_PATH")
	}
	if cfg.DatabaseDSN == "" && cfg.DBDriver == DriverSQLite {
		cfg.DatabaseDSN = filepath.Join("instance", "site.db")
	}

	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 10 * time.Second
	}

	switch cfg.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.DatabaseDSN == "" {
		return nil, errors.New("DATABASE_DSN is required for postgres")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("NEWSAPI_BASE_URL", "https://newsapi.org")
	v.SetDefault("CURRENTS_BASE_URL", "https://api.currentsapi.services")
	v.SetDefault("GUARDIAN_BASE_URL", "https://content.guardianapis.com")
	v.SetDefault("FETCH_TIMEOUT", "10s")
	v.SetDefault("DB_DRIVER", DriverSQLite)
}

// Enabled 返回已配置凭据的数据源名称，便于启动日志
func (c *Config) Enabled() []string {
	var out []string
	if c.NewsAPIKey != "" {
		out = append(out, "newsapi")
	}
	if c.CurrentsKey != "" {
		out = append(out, "currents")
	}
	if c.GuardianKey != "" {
		out = append(out, "guardian")
	}
	if len(c.FeedURLs) > 0 {
		out = append(out, "feed")
	}
	return out
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Now returns current time, 方便后续做可测试封装
func Now() time.Time {
	return time.Now()
}
