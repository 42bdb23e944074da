package history

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestMemoryStoreRecentOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for i := range 5 {
		err := s.Append(ctx, Record{
			ID:        fmt.Sprintf("r%d", i),
			Project:   "demo",
			CreatedAt: time.Unix(int64(i), 0),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	recent, err := s.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recent))
	}
	for i, want := range []string{"r4", "r3", "r2"} {
		if recent[i].ID != want {
			t.Errorf("recent[%d] = %s, want %s", i, recent[i].ID, want)
		}
	}
}

func TestMemoryStoreBacklogLimit(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for i := range memoryLimit + 10 {
		_ = s.Append(ctx, Record{ID: fmt.Sprintf("r%d", i)})
	}

	all, _ := s.Recent(ctx, memoryLimit*2)
	if len(all) != memoryLimit {
		t.Errorf("backlog = %d, want %d", len(all), memoryLimit)
	}
	if all[0].ID != fmt.Sprintf("r%d", memoryLimit+9) {
		t.Errorf("newest = %s", all[0].ID)
	}
}
