package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/LJTian/NewsBrief/internal/collector"
	"github.com/LJTian/NewsBrief/internal/config"
	"github.com/LJTian/NewsBrief/internal/logger"
	"github.com/LJTian/NewsBrief/internal/notify"
	"github.com/LJTian/NewsBrief/internal/processor"
)

// Archive 是流水线唯一会失败的下游：写入失败即整轮失败
type Archive interface {
	Append(ctx context.Context, batch []processor.SummarizedArticle) (int, error)
}

type Deps struct {
	Aggregator *collector.Aggregator
	Normalizer *processor.Normalizer
	Summarizer *processor.Summarizer
	Archive    Archive
	Notifier   notify.Notifier // 可选
	Logger     *zap.Logger
}

// Pipeline 采集 → 去重补全 → 摘要 → 归档，单轮同步执行
type Pipeline struct {
	aggregator *collector.Aggregator
	normalizer *processor.Normalizer
	summarizer *processor.Summarizer
	archive    Archive
	notifier   notify.Notifier
	log        *zap.Logger
}

func New(deps Deps) *Pipeline {
	normalizer := deps.Normalizer
	if normalizer == nil {
		normalizer = processor.NewNormalizer()
	}
	return &Pipeline{
		aggregator: deps.Aggregator,
		normalizer: normalizer,
		summarizer: deps.Summarizer,
		archive:    deps.Archive,
		notifier:   deps.Notifier,
		log:        logger.OrNop(deps.Logger),
	}
}

// NewFromConfig 按配置装配默认数据源、摘要器与通知器
func NewFromConfig(ctx context.Context, cfg *config.Config, archive Archive, log *zap.Logger) (*Pipeline, error) {
	log = logger.OrNop(log)

	summarizer, err := processor.NewSummarizer(log.With(zap.String("component", "summarizer")))
	if err != nil {
		return nil, err
	}

	notifier, err := notify.New(ctx, cfg.Notify, log.With(zap.String("component", "notify")))
	if err != nil {
		// 通知只是附加能力，配置错误不影响入库
		log.Error("notifier disabled", zap.Error(err))
		notifier = nil
	}

	return New(Deps{
		Aggregator: collector.NewAggregator(log.With(zap.String("component", "collector")), collector.DefaultSources(cfg)...),
		Summarizer: summarizer,
		Archive:    archive,
		Notifier:   notifier,
		Logger:     log.With(zap.String("component", "pipeline")),
	}), nil
}

// Run 执行一轮并返回入库条数；只有归档写入失败会返回 error
func (p *Pipeline) Run(ctx context.Context) (int, error) {
	if p.aggregator == nil || p.summarizer == nil || p.archive == nil {
		return 0, fmt.Errorf("pipeline: missing dependency")
	}
	start := time.Now()
	p.log.Info("start collect job")

	raw, results := p.aggregator.Collect(ctx)
	candidates := p.normalizer.Normalize(raw)
	summarized := p.summarizer.Summarize(candidates)

	saved, err := p.archive.Append(ctx, summarized)
	if err != nil {
		return 0, fmt.Errorf("persist batch: %w", err)
	}

	p.log.Info("collect job done",
		zap.Int("sources", len(results)),
		zap.Int("fetched", len(raw)),
		zap.Int("candidates", len(candidates)),
		zap.Int("saved", saved),
		zap.Duration("took", time.Since(start)),
	)

	p.notify(ctx, summarized, saved)
	return saved, nil
}

func (p *Pipeline) notify(ctx context.Context, batch []processor.SummarizedArticle, saved int) {
	if p.notifier == nil || saved == 0 {
		return
	}
	titles := make([]string, 0, len(batch))
	for _, a := range batch {
		titles = append(titles, a.Title)
	}
	evt := notify.Event{
		Type:      notify.EventArchiveUpdated,
		Saved:     saved,
		Titles:    titles,
		CreatedAt: config.Now().UTC(),
	}
	if err := p.notifier.Notify(ctx, evt); err != nil {
		p.log.Warn("notify archive update failed", zap.Error(err))
	}
}

// Close 释放通知器等外部连接
func (p *Pipeline) Close() error {
	if p.notifier == nil {
		return nil
	}
	return p.notifier.Close()
}
