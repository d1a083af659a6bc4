package processor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"go.uber.org/zap"

	"github.com/LJTian/NewsBrief/internal/logger"
)

const (
	// SummarySentences 每条摘要最多抽取的句子数
	SummarySentences = 2
	// FallbackRunes 抽取失败时截取正文的字符数
	FallbackRunes = 200
	Ellipsis      = "..."
)

// SummarizedArticle 摘要后的新闻，交给存储层入库
type SummarizedArticle struct {
	Title   string
	Summary string
	URL     string
	Image   string
}

// Summarizer 基于 LSA 的抽取式摘要；单条失败时降级为截断正文，从不丢弃条目
type Summarizer struct {
	sentences int
	tokenizer *sentences.DefaultSentenceTokenizer
	log       *zap.Logger
}

func NewSummarizer(log *zap.Logger) (*Summarizer, error) {
	tok, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("init sentence tokenizer: %w", err)
	}
	return &Summarizer{
		sentences: SummarySentences,
		tokenizer: tok,
		log:       logger.OrNop(log),
	}, nil
}

// Summarize 输出与输入一一对应，顺序不变
func (s *Summarizer) Summarize(items []Candidate) []SummarizedArticle {
	out := make([]SummarizedArticle, 0, len(items))
	for _, c := range items {
		out = append(out, SummarizedArticle{
			Title:   c.Title,
			Summary: s.summarizeBody(c.Body),
			URL:     c.URL,
			Image:   c.Image,
		})
	}
	return out
}

func (s *Summarizer) summarizeBody(body string) (summary string) {
	text := PlainText(body)

	defer func() {
		if r := recover(); r != nil {
			s.log.Warn("summarize panicked, fallback to truncation", zap.Any("panic", r))
			summary = fallbackSummary(text)
		}
	}()

	picked := s.extract(text)
	if len(picked) == 0 {
		return fallbackSummary(text)
	}
	return strings.Join(picked, " ")
}

// extract 返回按原文顺序排列的最多 s.sentences 个句子
func (s *Summarizer) extract(text string) []string {
	if text == "" {
		return nil
	}

	var sents []string
	for _, st := range s.tokenizer.Tokenize(text) {
		if t := strings.TrimSpace(st.Text); t != "" {
			sents = append(sents, t)
		}
	}
	if len(sents) == 0 {
		return nil
	}

	words := make([][]string, len(sents))
	for i, st := range sents {
		words[i] = tokenizeWords(st)
	}

	ranks := lsaRank(words)
	if ranks == nil {
		return nil
	}

	order := make([]int, len(sents))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return ranks[order[a]] > ranks[order[b]]
	})
	if len(order) > s.sentences {
		order = order[:s.sentences]
	}
	sort.Ints(order)

	picked := make([]string, 0, len(order))
	for _, idx := range order {
		picked = append(picked, sents[idx])
	}
	return picked
}

func fallbackSummary(text string) string {
	return truncateRunes(text, FallbackRunes) + Ellipsis
}

// PlainText 去掉 HTML 标记，文本节点之间以空格分隔并压缩空白
func PlainText(body string) string {
	if !strings.ContainsAny(body, "<&") {
		return strings.Join(strings.Fields(body), " ")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return strings.Join(strings.Fields(body), " ")
	}
	doc.Find("script,style,noscript").Remove()

	var parts []string
	var collect func(sel *goquery.Selection)
	collect = func(sel *goquery.Selection) {
		sel.Contents().Each(func(_ int, node *goquery.Selection) {
			if goquery.NodeName(node) == "#text" {
				parts = append(parts, node.Text())
				return
			}
			collect(node)
		})
	}
	collect(doc.Selection)

	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
