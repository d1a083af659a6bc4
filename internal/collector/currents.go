package collector

import (
	"context"
	"fmt"
	"time"
)

const (
	currentsName        = "currents"
	currentsDefaultBase = "https://api.currentsapi.services"
)

// CurrentsSource 获取 Currents API 的最新新闻
type CurrentsSource struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type currentsArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Image       string `json:"image"`
}

// Currents 官方返回 news 字段，部分镜像返回 articles，两者都接受
type currentsResponse struct {
	Status   string            `json:"status"`
	News     []currentsArticle `json:"news"`
	Articles []currentsArticle `json:"articles"`
}

func (s *CurrentsSource) Name() string {
	return currentsName
}

func (s *CurrentsSource) Fetch(ctx context.Context) Result {
	if s.APIKey == "" {
		return disabledResult(currentsName)
	}

	endpoint := baseOr(s.BaseURL, currentsDefaultBase) + "/v1/latest-news"

	var resp currentsResponse
	headers := map[string]string{"Authorization": s.APIKey}
	if err := getJSON(ctx, endpoint, headers, s.Timeout, &resp); err != nil {
		return failedResult(currentsName, redact(err, s.APIKey))
	}
	if resp.Status != "" && resp.Status != "ok" {
		return failedResult(currentsName, fmt.Errorf("currents: status %q", resp.Status))
	}

	list := resp.News
	if len(list) == 0 {
		list = resp.Articles
	}

	items := make([]RawItem, 0, len(list))
	for _, a := range list {
		image := a.Image
		// Currents 无图时返回字面量 "None"
		if image == "None" {
			image = ""
		}
		items = append(items, RawItem{
			Title: a.Title,
			Body:  a.Description,
			URL:   a.URL,
			Image: image,
		})
	}
	return okResult(currentsName, items)
}
