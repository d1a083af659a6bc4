package collector

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

const (
	newsAPIName        = "newsapi"
	newsAPIDefaultBase = "https://newsapi.org"
	newsAPIPageSize    = 5
)

// NewsAPISource 通过 NewsAPI top-headlines 接口获取英文头条
type NewsAPISource struct {
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
	PageSize int
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
		URL         string `json:"url"`
		URLToImage  string `json:"urlToImage"`
	} `json:"articles"`
}

func (s *NewsAPISource) Name() string {
	return newsAPIName
}

func (s *NewsAPISource) Fetch(ctx context.Context) Result {
	if s.APIKey == "" {
		return disabledResult(newsAPIName)
	}

	pageSize := s.PageSize
	if pageSize <= 0 {
		pageSize = newsAPIPageSize
	}
	q := url.Values{}
	q.Set("language", "en")
	q.Set("pageSize", strconv.Itoa(pageSize))
	endpoint := baseOr(s.BaseURL, newsAPIDefaultBase) + "/v2/top-headlines?" + q.Encode()

	var resp newsAPIResponse
	headers := map[string]string{"X-Api-Key": s.APIKey}
	if err := getJSON(ctx, endpoint, headers, s.Timeout, &resp); err != nil {
		return failedResult(newsAPIName, redact(err, s.APIKey))
	}
	if resp.Status != "" && resp.Status != "ok" {
		return failedResult(newsAPIName, fmt.Errorf("newsapi: %s: %s", resp.Code, resp.Message))
	}

	items := make([]RawItem, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		items = append(items, RawItem{
			Title: a.Title,
			// content 为空时退回 description
			Body:  firstNonEmpty(a.Content, a.Description),
			URL:   a.URL,
			Image: a.URLToImage,
		})
	}
	return okResult(newsAPIName, items)
}
