package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nadlan/propstat/internal/rates"
)

type fakeFetcher struct {
	mu   sync.Mutex
	keys []string
}

func (f *fakeFetcher) FetchLiveRates(ctx context.Context, apiKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, apiKey)
	return nil
}

func (f *fakeFetcher) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.keys...)
}

func TestRateWorkerFetchesImmediately(t *testing.T) {
	fetcher := &fakeFetcher{}
	w := NewRateWorker(fetcher, nil, "default-key", time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for len(fetcher.calls()) == 0 {
		select {
		case <-deadline:
			t.Fatal("no fetch before the first tick")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if got := fetcher.calls(); got[0] != "default-key" {
		t.Errorf("fetch key = %q, want %q", got[0], "default-key")
	}
}

func TestRateWorkerTicks(t *testing.T) {
	fetcher := &fakeFetcher{}
	w := NewRateWorker(fetcher, nil, "", 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for len(fetcher.calls()) < 3 {
		select {
		case <-deadline:
			t.Fatalf("got %d fetches, want at least 3", len(fetcher.calls()))
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	<-done
}

func TestRateWorkerPrefersStoredAPIKey(t *testing.T) {
	settings := rates.NewMemorySettingsRepository()
	if err := settings.SaveAPIKey(context.Background(), "stored-key"); err != nil {
		t.Fatalf("SaveAPIKey: %v", err)
	}

	fetcher := &fakeFetcher{}
	w := NewRateWorker(fetcher, settings, "default-key", time.Hour)

	w.refresh(context.Background())

	got := fetcher.calls()
	if len(got) != 1 || got[0] != "stored-key" {
		t.Errorf("fetch keys = %v, want [stored-key]", got)
	}
}

func TestRateWorkerFallsBackToDefaultKey(t *testing.T) {
	fetcher := &fakeFetcher{}
	w := NewRateWorker(fetcher, rates.NewMemorySettingsRepository(), "default-key", time.Hour)

	w.refresh(context.Background())

	got := fetcher.calls()
	if len(got) != 1 || got[0] != "default-key" {
		t.Errorf("fetch keys = %v, want [default-key]", got)
	}
}
