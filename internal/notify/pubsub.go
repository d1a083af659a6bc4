package notify

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/LJTian/NewsBrief/internal/config"
)

// publishFunc 发布一条消息并等待服务端返回消息 ID
type publishFunc func(ctx context.Context, data []byte, attrs map[string]string) (string, error)

type pubsubNotifier struct {
	publish publishFunc
	closeFn func() error
	log     *zap.Logger
}

func newPubSubNotifier(ctx context.Context, cfg config.NotifyConfig, log *zap.Logger) (Notifier, error) {
	if cfg.GCPProjectID == "" || cfg.PubSubTopic == "" {
		return nil, errors.New("GCP_PROJECT_ID and NOTIFY_PUBSUB_TOPIC are required for gcp-pubsub")
	}

	var opts []option.ClientOption
	if cfg.GCPCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GCPCredentialsFile))
	}
	client, err := pubsub.NewClient(ctx, cfg.GCPProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	topic := client.Topic(cfg.PubSubTopic)

	return &pubsubNotifier{
		publish: func(ctx context.Context, data []byte, attrs map[string]string) (string, error) {
			return topic.Publish(ctx, &pubsub.Message{Data: data, Attributes: attrs}).Get(ctx)
		},
		closeFn: func() error {
			topic.Stop()
			return client.Close()
		},
		log: log,
	}, nil
}

func (n *pubsubNotifier) Notify(ctx context.Context, evt Event) error {
	body, err := encode(evt)
	if err != nil {
		return err
	}
	id, err := n.publish(ctx, []byte(body), map[string]string{"event_type": EventArchiveUpdated})
	if err != nil {
		return fmt.Errorf("publish to pubsub: %w", err)
	}
	n.log.Debug("pubsub event delivered", zap.String("message_id", id))
	return nil
}

func (n *pubsubNotifier) Close() error {
	if n.closeFn == nil {
		return nil
	}
	return n.closeFn()
}
