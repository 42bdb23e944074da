package observability

import (
	"context"
	"sync"
	"testing"
	"time"
)

type recordingResolutionHooks struct {
	NoopResolutionHooks
	mu        sync.Mutex
	completed []string
	cycles    int
}

func (r *recordingResolutionHooks) OnResolutionComplete(ctx context.Context, coord, version string, depCount int, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, coord+":"+version)
}

func (r *recordingResolutionHooks) OnCycleDetected(ctx context.Context, coord string, path []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cycles++
}

func TestSetAndGetResolutionHooks(t *testing.T) {
	defer Reset()

	rec := &recordingResolutionHooks{}
	SetResolutionHooks(rec)

	Resolution().OnResolutionComplete(context.Background(), "com.x:y", "1.0", 3, time.Millisecond)
	Resolution().OnCycleDetected(context.Background(), "com.x:y", []string{"a", "b"})

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.completed) != 1 || rec.completed[0] != "com.x:y:1.0" {
		t.Errorf("completed = %v", rec.completed)
	}
	if rec.cycles != 1 {
		t.Errorf("cycles = %d, want 1", rec.cycles)
	}
}

func TestSetNilHooksKeepsCurrent(t *testing.T) {
	defer Reset()

	rec := &recordingResolutionHooks{}
	SetResolutionHooks(rec)
	SetResolutionHooks(nil)

	if Resolution() != rec {
		t.Error("nil registration should not replace hooks")
	}
}

func TestResetRestoresNoops(t *testing.T) {
	SetResolutionHooks(&recordingResolutionHooks{})
	SetDownloadHooks(NoopDownloadHooks{})
	Reset()

	if _, ok := Resolution().(NoopResolutionHooks); !ok {
		t.Error("Reset should restore noop resolution hooks")
	}
	if _, ok := Download().(NoopDownloadHooks); !ok {
		t.Error("Reset should restore noop download hooks")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("Reset should restore noop HTTP hooks")
	}
}

func TestConcurrentEmission(t *testing.T) {
	defer Reset()

	rec := &recordingResolutionHooks{}
	SetResolutionHooks(rec)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Resolution().OnResolutionComplete(context.Background(), "g:a", "1", 0, 0)
		}()
	}
	wg.Wait()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.completed) != 16 {
		t.Errorf("expected 16 events, got %d", len(rec.completed))
	}
}
