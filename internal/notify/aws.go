package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/LJTian/NewsBrief/internal/config"
)

// snsClient / sqsClient 只声明用到的方法，便于测试替换
type snsClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type sqsClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// loadAWSConfig 配置了静态密钥时使用静态凭据，否则走默认凭据链
func loadAWSConfig(ctx context.Context, cfg config.NotifyConfig) (aws.Config, error) {
	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(cfg.AWSRegion)}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		creds := credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, "")
		opts = append(opts, awscfg.WithCredentialsProvider(creds))
	}
	awsCfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return awsCfg, nil
}

type snsNotifier struct {
	topicARN string
	client   snsClient
	log      *zap.Logger
}

func newSNSNotifier(ctx context.Context, cfg config.NotifyConfig, log *zap.Logger) (Notifier, error) {
	if cfg.SNSTopicARN == "" {
		return nil, errors.New("NOTIFY_SNS_TOPIC_ARN is required for aws-sns")
	}
	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &snsNotifier{topicARN: cfg.SNSTopicARN, client: sns.NewFromConfig(awsCfg), log: log}, nil
}

func (n *snsNotifier) Notify(ctx context.Context, evt Event) error {
	body, err := encode(evt)
	if err != nil {
		return err
	}
	resp, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Message:  aws.String(body),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"event_type": {DataType: aws.String("String"), StringValue: aws.String(EventArchiveUpdated)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish to sns: %w", err)
	}
	n.log.Debug("sns event delivered", zap.String("message_id", aws.ToString(resp.MessageId)))
	return nil
}

func (n *snsNotifier) Close() error { return nil }

type sqsNotifier struct {
	queueURL string
	client   sqsClient
	log      *zap.Logger
}

func newSQSNotifier(ctx context.Context, cfg config.NotifyConfig, log *zap.Logger) (Notifier, error) {
	if cfg.SQSQueueURL == "" {
		return nil, errors.New("NOTIFY_SQS_QUEUE_URL is required for aws-sqs")
	}
	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &sqsNotifier{queueURL: cfg.SQSQueueURL, client: sqs.NewFromConfig(awsCfg), log: log}, nil
}

func (n *sqsNotifier) Notify(ctx context.Context, evt Event) error {
	body, err := encode(evt)
	if err != nil {
		return err
	}
	resp, err := n.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(n.queueURL),
		MessageBody: aws.String(body),
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"event_type": {DataType: aws.String("String"), StringValue: aws.String(EventArchiveUpdated)},
		},
	})
	if err != nil {
		return fmt.Errorf("send message to sqs: %w", err)
	}
	n.log.Debug("sqs event delivered", zap.String("message_id", aws.ToString(resp.MessageId)))
	return nil
}

func (n *sqsNotifier) Close() error { return nil }
