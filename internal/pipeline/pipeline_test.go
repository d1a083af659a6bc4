package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/LJTian/NewsBrief/internal/collector"
	"github.com/LJTian/NewsBrief/internal/notify"
	"github.com/LJTian/NewsBrief/internal/processor"
)

type staticSource struct {
	name  string
	items []collector.RawItem
}

func (s *staticSource) Name() string { return s.name }

func (s *staticSource) Fetch(ctx context.Context) collector.Result {
	return collector.Result{Source: s.name, Items: s.items, Status: collector.StatusOK}
}

type offSource struct{ name string }

func (s *offSource) Name() string { return s.name }

func (s *offSource) Fetch(ctx context.Context) collector.Result {
	return collector.Result{Source: s.name, Status: collector.StatusDisabled, Err: collector.ErrNoCredential}
}

type memArchive struct {
	batches [][]processor.SummarizedArticle
	err     error
}

func (m *memArchive) Append(ctx context.Context, batch []processor.SummarizedArticle) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.batches = append(m.batches, batch)
	return len(batch), nil
}

type recordingNotifier struct {
	events []notify.Event
	err    error
}

func (r *recordingNotifier) Notify(ctx context.Context, evt notify.Event) error {
	r.events = append(r.events, evt)
	return r.err
}

func (r *recordingNotifier) Close() error { return nil }

func newTestPipeline(t *testing.T, archive Archive, n notify.Notifier, sources ...collector.Source) *Pipeline {
	t.Helper()
	s, err := processor.NewSummarizer(nil)
	if err != nil {
		t.Fatalf("NewSummarizer: %v", err)
	}
	return New(Deps{
		Aggregator: collector.NewAggregator(nil, sources...),
		Summarizer: s,
		Archive:    archive,
		Notifier:   n,
	})
}

func TestRunFirstSeenTitleWinsAcrossSources(t *testing.T) {
	archive := &memArchive{}
	p := newTestPipeline(t, archive, nil,
		&staticSource{name: "newsapi", items: []collector.RawItem{{Title: "A", Body: "x y", URL: "u1"}}},
		&offSource{name: "currents"},
		&staticSource{name: "guardian", items: []collector.RawItem{{Title: "A", Body: "z", URL: "u2"}}},
	)

	saved, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if saved != 1 {
		t.Fatalf("saved = %d, want 1", saved)
	}
	got := archive.batches[0][0]
	if got.Title != "A" || got.URL != "u1" {
		t.Fatalf("first-seen item should win: %+v", got)
	}
	if got.Summary == "" {
		t.Fatalf("summary must not be empty")
	}
	if !strings.HasPrefix(got.Image, "https://source.unsplash.com/") {
		t.Fatalf("missing image should be resolved, got %q", got.Image)
	}
}

func TestRunWithAllSourcesDisabledSavesNothing(t *testing.T) {
	archive := &memArchive{}
	n := &recordingNotifier{}
	p := newTestPipeline(t, archive, n, &offSource{name: "newsapi"}, &offSource{name: "currents"}, &offSource{name: "guardian"})

	saved, err := p.Run(context.Background())
	if err != nil || saved != 0 {
		t.Fatalf("Run = %d, %v", saved, err)
	}
	// 空批次也要交给存储层，以便执行淘汰
	if len(archive.batches) != 1 || len(archive.batches[0]) != 0 {
		t.Fatalf("archive should receive one empty batch, got %v", archive.batches)
	}
	if len(n.events) != 0 {
		t.Fatalf("no event expected for empty batch")
	}
}

func TestRunPropagatesPersistenceFailure(t *testing.T) {
	archive := &memArchive{err: errors.New("database is locked")}
	p := newTestPipeline(t, archive, nil,
		&staticSource{name: "newsapi", items: []collector.RawItem{{Title: "A", Body: "Body text.", URL: "u1"}}},
	)

	if _, err := p.Run(context.Background()); err == nil {
		t.Fatalf("expected persistence error")
	}
}

func TestRunNotifyFailureIsNotFatal(t *testing.T) {
	archive := &memArchive{}
	n := &recordingNotifier{err: errors.New("topic missing")}
	p := newTestPipeline(t, archive, n,
		&staticSource{name: "newsapi", items: []collector.RawItem{
			{Title: "A", Body: "Alpha story text.", URL: "u1"},
			{Title: "B", Body: "Beta story text.", URL: "u2"},
		}},
	)

	saved, err := p.Run(context.Background())
	if err != nil || saved != 2 {
		t.Fatalf("Run = %d, %v", saved, err)
	}
	if len(n.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(n.events))
	}
	evt := n.events[0]
	if evt.Type != notify.EventArchiveUpdated || evt.Saved != 2 || evt.Titles[0] != "A" || evt.Titles[1] != "B" {
		t.Fatalf("unexpected event: %+v", evt)
	}
}

func TestRunRequiresDependencies(t *testing.T) {
	if _, err := New(Deps{}).Run(context.Background()); err == nil {
		t.Fatalf("expected error for missing dependencies")
	}
}
