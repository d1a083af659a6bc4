package collector

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/LJTian/NewsBrief/internal/config"
	"github.com/LJTian/NewsBrief/internal/logger"
)

// Aggregator 并发调用全部数据源，并按注册顺序拼接结果（不做去重与校验）
type Aggregator struct {
	sources []Source
	log     *zap.Logger
}

func NewAggregator(log *zap.Logger, sources ...Source) *Aggregator {
	return &Aggregator{sources: sources, log: logger.OrNop(log)}
}

// DefaultSources 固定顺序：NewsAPI → Currents → Guardian → Feed
func DefaultSources(cfg *config.Config) []Source {
	return []Source{
		&NewsAPISource{APIKey: cfg.NewsAPIKey, BaseURL: cfg.NewsAPIBaseURL, Timeout: cfg.FetchTimeout},
		&CurrentsSource{APIKey: cfg.CurrentsKey, BaseURL: cfg.CurrentsBaseURL, Timeout: cfg.FetchTimeout},
		&GuardianSource{APIKey: cfg.GuardianKey, BaseURL: cfg.GuardianBaseURL, Timeout: cfg.FetchTimeout},
		&FeedSource{URLs: cfg.FeedURLs, Timeout: cfg.FetchTimeout},
	}
}

// Collect 返回拼接后的 RawItem 以及每个数据源的结果（顺序与注册顺序一致，与耗时无关）
func (a *Aggregator) Collect(ctx context.Context) ([]RawItem, []Result) {
	results := make([]Result, len(a.sources))

	var g errgroup.Group
	for i, src := range a.sources {
		if src == nil {
			results[i] = failedResult("unknown", fmt.Errorf("source %d is nil", i))
			continue
		}
		g.Go(func() error {
			results[i] = a.fetchOne(ctx, src)
			return nil
		})
	}
	// fetchOne 自行吸收错误与 panic，Wait 只用于等待全部完成
	g.Wait()

	var items []RawItem
	for _, res := range results {
		a.logResult(res)
		items = append(items, res.Items...)
	}
	return items, results
}

func (a *Aggregator) fetchOne(ctx context.Context, src Source) (res Result) {
	name := src.Name()
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = failedResult(name, fmt.Errorf("panic: %v", r))
		}
		a.log.Debug("source fetched", zap.String("source", name), zap.Duration("took", time.Since(start)))
	}()

	res = src.Fetch(ctx)
	if res.Source == "" {
		res.Source = name
	}
	if res.Status != StatusOK {
		res.Items = nil
	}
	return res
}

func (a *Aggregator) logResult(res Result) {
	fields := []zap.Field{
		zap.String("source", res.Source),
		zap.String("status", string(res.Status)),
		zap.Int("items", len(res.Items)),
	}
	switch res.Status {
	case StatusOK:
		if res.Err != nil {
			fields = append(fields, zap.Error(res.Err))
		}
		a.log.Info("source done", fields...)
	case StatusDisabled:
		a.log.Info("source disabled, credential missing", fields...)
	default:
		a.log.Warn("source failed, skipped", append(fields, zap.Error(res.Err))...)
	}
}
