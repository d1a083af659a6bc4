package processor

import (
	"strings"
	"testing"
)

func newTestSummarizer(t *testing.T) *Summarizer {
	t.Helper()
	s, err := NewSummarizer(nil)
	if err != nil {
		t.Fatalf("NewSummarizer error: %v", err)
	}
	return s
}

func TestPlainTextStripsMarkup(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"plain   text\nhere", "plain text here"},
		{"<p>Hello <b>world</b> today.</p>", "Hello world today."},
		{"<p>One.</p><p>Two.</p>", "One. Two."},
		{"Fish &amp; chips", "Fish & chips"},
		{"<style>p{}</style><script>x()</script>Body", "Body"},
		{"<br/>", ""},
		{"<div>Keep<script>drop()</script> <i>this</i><noscript>gone</noscript></div>", "Keep this"},
	}
	for _, c := range cases {
		if got := PlainText(c.in); got != c.want {
			t.Fatalf("PlainText(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSummarizePicksAtMostTwoSentencesInSourceOrder(t *testing.T) {
	sents := []string{
		"The city council approved a new budget for public transport on Monday.",
		"Bus routes across the city will expand next year under the budget.",
		"Critics said the council ignored cycling lanes in the transport budget.",
		"The weather stayed mild all week.",
	}
	body := "<p>" + strings.Join(sents, " ") + "</p>"

	s := newTestSummarizer(t)
	out := s.Summarize([]Candidate{{Title: "Budget", Body: body, URL: "u", Image: "i"}})
	if len(out) != 1 {
		t.Fatalf("expected 1 summarized article, got %d", len(out))
	}
	summary := out[0].Summary

	matched := false
	for i := 0; i < len(sents); i++ {
		for j := i + 1; j < len(sents); j++ {
			if summary == sents[i]+" "+sents[j] {
				matched = true
			}
		}
	}
	if !matched {
		t.Fatalf("summary should be two source sentences in original order, got %q", summary)
	}
	if out[0].Title != "Budget" || out[0].URL != "u" || out[0].Image != "i" {
		t.Fatalf("metadata not carried over: %+v", out[0])
	}

	// 确定性
	again := s.Summarize([]Candidate{{Title: "Budget", Body: body}})
	if again[0].Summary != summary {
		t.Fatalf("summary not deterministic: %q vs %q", again[0].Summary, summary)
	}
}

func TestSummarizeSingleSentence(t *testing.T) {
	s := newTestSummarizer(t)
	out := s.Summarize([]Candidate{{Title: "t", Body: "Only one sentence lives here."}})
	if out[0].Summary != "Only one sentence lives here." {
		t.Fatalf("unexpected summary %q", out[0].Summary)
	}
}

func TestSummarizeFallsBackWhenNoSentences(t *testing.T) {
	s := newTestSummarizer(t)

	cases := []struct {
		body, want string
	}{
		{"12345 67890", "12345 67890..."},
		{"<br/>", "..."},
		{"!!! ???", "!!! ???..."},
	}
	for _, c := range cases {
		out := s.Summarize([]Candidate{{Title: "t", Body: c.body}})
		if out[0].Summary != c.want {
			t.Fatalf("body %q: summary = %q, want %q", c.body, out[0].Summary, c.want)
		}
	}
}

func TestFallbackSummaryTruncatesTo200Runes(t *testing.T) {
	text := strings.Repeat("x", 250)
	got := fallbackSummary(text)
	if got != strings.Repeat("x", FallbackRunes)+Ellipsis {
		t.Fatalf("unexpected fallback length %d", len(got))
	}
}

func TestSummarizeKeepsOrderAndCount(t *testing.T) {
	s := newTestSummarizer(t)
	in := []Candidate{
		{Title: "a", Body: "First story is about rain."},
		{Title: "b", Body: "99"},
		{Title: "c", Body: "Third story is about sun."},
	}
	out := s.Summarize(in)
	if len(out) != len(in) {
		t.Fatalf("summarizer must not drop items: got %d", len(out))
	}
	for i := range in {
		if out[i].Title != in[i].Title {
			t.Fatalf("out[%d].Title = %q, want %q", i, out[i].Title, in[i].Title)
		}
		if out[i].Summary == "" {
			t.Fatalf("out[%d] has empty summary", i)
		}
	}
}

func TestLSARank(t *testing.T) {
	if lsaRank(nil) != nil {
		t.Fatalf("no sentences should yield nil ranks")
	}
	if lsaRank([][]string{{}, {}}) != nil {
		t.Fatalf("no words should yield nil ranks")
	}

	ranks := lsaRank([][]string{
		{"budget", "council", "transport"},
		{"budget", "bus", "transport"},
		{},
	})
	if len(ranks) != 3 {
		t.Fatalf("expected 3 ranks, got %d", len(ranks))
	}
	if ranks[2] != 0 {
		t.Fatalf("sentence without words should rank 0, got %v", ranks[2])
	}
	if ranks[0] <= 0 || ranks[1] <= 0 {
		t.Fatalf("sentences with words should rank above 0: %v", ranks)
	}
}

func TestTokenizeWords(t *testing.T) {
	got := tokenizeWords("It's the 2024 well-known Budget, 3rd time!")
	want := []string{"it's", "the", "well-known", "budget", "time"}
	if len(got) != len(want) {
		t.Fatalf("tokenizeWords = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tokenizeWords[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
