package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

const (
	userAgent      = "NewsBriefBot/1.0"
	defaultTimeout = 10 * time.Second
)

// getJSON 使用 colly 拉取一个 JSON 接口并解码到 out；非 2xx、超时与解码失败都返回 error
func getJSON(ctx context.Context, rawURL string, headers map[string]string, timeout time.Duration, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := colly.NewCollector(colly.UserAgent(userAgent))
	c.SetRequestTimeout(timeout)

	var (
		got       bool
		decodeErr error
	)
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "application/json")
		for k, v := range headers {
			r.Headers.Set(k, v)
		}
	})
	c.OnResponse(func(r *colly.Response) {
		got = true
		if err := json.Unmarshal(r.Body, out); err != nil {
			decodeErr = fmt.Errorf("decode response: %w", err)
		}
	})

	if err := c.Visit(rawURL); err != nil {
		return err
	}
	if !got {
		return errors.New("empty response")
	}
	return decodeErr
}

// redact 去掉错误信息中的凭据，避免 URL 中的 key 进入日志
func redact(err error, secret string) error {
	if err == nil || secret == "" {
		return err
	}
	msg := err.Error()
	if !strings.Contains(msg, secret) {
		return err
	}
	return errors.New(strings.ReplaceAll(msg, secret, "***"))
}

func baseOr(base, def string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return def
	}
	return base
}
