package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/LJTian/NewsBrief/internal/config"
	"github.com/LJTian/NewsBrief/internal/logger"
)

const (
	ProviderAWSSNS    = "aws-sns"
	ProviderAWSSQS    = "aws-sqs"
	ProviderGCPPubSub = "gcp-pubsub"

	EventArchiveUpdated = "archive.updated"
)

// Event 归档写入成功后推送给下游（如缓存预热、静态页重建）的事件
type Event struct {
	Type      string    `json:"type"`
	Saved     int       `json:"saved"`
	Titles    []string  `json:"titles"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier 将事件投递到外部消息系统
type Notifier interface {
	Notify(ctx context.Context, evt Event) error
	Close() error
}

// New 按配置构建 Notifier；Provider 为空时返回 (nil, nil)
func New(ctx context.Context, cfg config.NotifyConfig, log *zap.Logger) (Notifier, error) {
	log = logger.OrNop(log)

	switch cfg.Provider {
	case "":
		return nil, nil
	case ProviderAWSSNS:
		return newSNSNotifier(ctx, cfg, log)
	case ProviderAWSSQS:
		return newSQSNotifier(ctx, cfg, log)
	case ProviderGCPPubSub:
		return newPubSubNotifier(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("notify provider %q is not supported", cfg.Provider)
	}
}

func encode(evt Event) (string, error) {
	if evt.Type == "" {
		evt.Type = EventArchiveUpdated
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}
	return string(payload), nil
}
