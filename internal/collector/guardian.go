package collector

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

const (
	guardianName        = "guardian"
	guardianDefaultBase = "https://content.guardianapis.com"
)

// GuardianSource 通过 Guardian Content API 搜索接口获取文章（附带导语与缩略图）
type GuardianSource struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type guardianResponse struct {
	Response struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Results []struct {
			WebTitle string `json:"webTitle"`
			WebURL   string `json:"webUrl"`
			Fields   struct {
				TrailText string `json:"trailText"`
				Thumbnail string `json:"thumbnail"`
			} `json:"fields"`
		} `json:"results"`
	} `json:"response"`
}

func (s *GuardianSource) Name() string {
	return guardianName
}

func (s *GuardianSource) Fetch(ctx context.Context) Result {
	if s.APIKey == "" {
		return disabledResult(guardianName)
	}

	// Guardian 只支持 query 传 key
	q := url.Values{}
	q.Set("api-key", s.APIKey)
	q.Set("show-fields", "trailText,thumbnail")
	endpoint := baseOr(s.BaseURL, guardianDefaultBase) + "/search?" + q.Encode()

	var resp guardianResponse
	if err := getJSON(ctx, endpoint, nil, s.Timeout, &resp); err != nil {
		return failedResult(guardianName, redact(err, s.APIKey))
	}
	if st := resp.Response.Status; st != "" && st != "ok" {
		return failedResult(guardianName, fmt.Errorf("guardian: %s %s", st, resp.Response.Message))
	}

	items := make([]RawItem, 0, len(resp.Response.Results))
	for _, r := range resp.Response.Results {
		items = append(items, RawItem{
			Title: r.WebTitle,
			Body:  r.Fields.TrailText,
			URL:   r.WebURL,
			Image: r.Fields.Thumbnail,
		})
	}
	return okResult(guardianName, items)
}
