package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type countingRunner struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (r *countingRunner) Run(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return 0, r.err
	}
	return 3, nil
}

func (r *countingRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestNewRejectsInvalidSpec(t *testing.T) {
	if _, err := New("not a cron", &countingRunner{}, nil); err == nil {
		t.Fatalf("expected error for invalid spec")
	}
}

func TestNewRegistersJob(t *testing.T) {
	s, err := New("@every 1h", &countingRunner{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if n := len(s.Cron().Entries()); n != 1 {
		t.Fatalf("entries = %d, want 1", n)
	}
}

func TestRunOnceDelegates(t *testing.T) {
	r := &countingRunner{}
	s, err := New("@every 1h", r, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	saved, err := s.RunOnce(context.Background())
	if err != nil || saved != 3 {
		t.Fatalf("RunOnce = %d, %v", saved, err)
	}

	r.err = errors.New("boom")
	if _, err := s.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected runner error to propagate")
	}
	if r.count() != 2 {
		t.Fatalf("calls = %d, want 2", r.count())
	}
}

func TestStartTriggersStartupRun(t *testing.T) {
	r := &countingRunner{}
	s, err := New("@every 1h", r, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.StartupDelay = 10 * time.Millisecond
	s.Start()
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for r.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("startup run did not happen")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStopCancelsPendingStartupRun(t *testing.T) {
	r := &countingRunner{}
	s, err := New("@every 1h", r, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.StartupDelay = 50 * time.Millisecond
	s.Start()
	<-s.Stop().Done()

	time.Sleep(150 * time.Millisecond)
	if n := r.count(); n != 0 {
		t.Fatalf("startup run fired after Stop, calls = %d", n)
	}
}
