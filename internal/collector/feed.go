package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

const feedName = "feed"

// FeedSource 读取 RSS/Atom 订阅；单个订阅失败只跳过该订阅
type FeedSource struct {
	URLs    []string
	Timeout time.Duration
}

func (s *FeedSource) Name() string {
	return feedName
}

func (s *FeedSource) Fetch(ctx context.Context) Result {
	if len(s.URLs) == 0 {
		return disabledResult(feedName)
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	fp := gofeed.NewParser()
	fp.UserAgent = userAgent
	fp.Client = &http.Client{Timeout: timeout}

	var (
		items  []RawItem
		errs   []error
		parsed int
	)
	for _, u := range s.URLs {
		feed, err := parseFeed(ctx, fp, u, timeout)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", u, err))
			continue
		}
		parsed++
		for _, it := range feed.Items {
			if it == nil {
				continue
			}
			items = append(items, RawItem{
				Title: it.Title,
				Body:  firstNonEmpty(it.Content, it.Description),
				URL:   it.Link,
				Image: feedImage(it),
			})
		}
	}

	if parsed == 0 {
		return failedResult(feedName, errors.Join(errs...))
	}
	res := okResult(feedName, items)
	// 部分订阅失败时仍返回成功结果，失败原因保留在 Err 中
	res.Err = errors.Join(errs...)
	return res
}

func parseFeed(ctx context.Context, fp *gofeed.Parser, u string, timeout time.Duration) (*gofeed.Feed, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fp.ParseURLWithContext(u, ctx)
}

func feedImage(it *gofeed.Item) string {
	if it.Image != nil && it.Image.URL != "" {
		return it.Image.URL
	}
	for _, enc := range it.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}
