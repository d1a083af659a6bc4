package processor

import (
	"net/url"
	"strings"
)

const (
	imageSearchURL   = "https://source.unsplash.com/600x400/?"
	defaultImageTerm = "news"
)

// ResolveImage 为缺图新闻拼出一个配图搜索地址；纯函数，不发起请求，由展示层延迟加载
func ResolveImage(query string) string {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		terms = []string{defaultImageTerm}
	}
	for i, t := range terms {
		terms[i] = url.QueryEscape(t)
	}
	return imageSearchURL + strings.Join(terms, ",")
}
