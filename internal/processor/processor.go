package processor

import (
	"strings"

	"github.com/LJTian/NewsBrief/internal/collector"
)

// MaxCandidates 单轮最多保留的候选数，控制摘要与入库成本
const MaxCandidates = 9

// Candidate 是去重、补全后的待摘要新闻；Title/Body 非空，Image 必有值
type Candidate struct {
	Title string
	Body  string
	URL   string
	Image string
}

// Normalizer 过滤不完整条目、按标题去重并截断数量
type Normalizer struct {
	Limit        int
	ResolveImage func(query string) string
}

func NewNormalizer() *Normalizer {
	return &Normalizer{Limit: MaxCandidates, ResolveImage: ResolveImage}
}

// Normalize 按输入顺序处理：标题相同时先到先得，凑满 Limit 条后立即停止
func (n *Normalizer) Normalize(items []collector.RawItem) []Candidate {
	limit := n.Limit
	if limit <= 0 {
		limit = MaxCandidates
	}
	resolve := n.ResolveImage
	if resolve == nil {
		resolve = ResolveImage
	}

	out := make([]Candidate, 0, min(limit, len(items)))
	seen := make(map[string]struct{})

	for _, it := range items {
		if isBlank(it.Title) || isBlank(it.Body) {
			continue
		}
		// 去重键为标题原文，大小写敏感
		if _, ok := seen[it.Title]; ok {
			continue
		}
		seen[it.Title] = struct{}{}

		image := it.Image
		if isBlank(image) {
			image = resolve(it.Title)
		}

		out = append(out, Candidate{
			Title: it.Title,
			Body:  it.Body,
			URL:   it.URL,
			Image: image,
		})
		if len(out) >= limit {
			break
		}
	}

	return out
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// truncateRunes 按字符截断，避免截断多字节字符
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}
