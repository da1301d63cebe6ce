package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	type entry struct {
		Key   string `json:"key"`
		Count int64  `json:"count"`
	}
	in := []entry{{Key: "Hydrology", Count: 3}, {Key: "Ecology", Count: 1}}

	if err := c.SetJSON(ctx, KeyCategoryCounts, in, time.Minute); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}

	var out []entry
	hit, err := c.GetJSON(ctx, KeyCategoryCounts, &out)
	if err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if !hit {
		t.Fatal("expected cache hit")
	}
	if len(out) != 2 || out[0].Key != "Hydrology" || out[0].Count != 3 {
		t.Errorf("round trip mismatch: %+v", out)
	}
}

func TestMemoryCache_MissAndExpiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	var out string
	hit, err := c.GetJSON(ctx, "absent", &out)
	if err != nil || hit {
		t.Fatalf("expected clean miss, got hit=%v err=%v", hit, err)
	}

	// 过期条目视为未命中
	if err := c.SetJSON(ctx, "short", "value", time.Nanosecond); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	time.Sleep(time.Millisecond)
	hit, err = c.GetJSON(ctx, "short", &out)
	if err != nil || hit {
		t.Fatalf("expected expired miss, got hit=%v err=%v", hit, err)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	for _, key := range AggregateKeys {
		if err := c.SetJSON(ctx, key, "v", time.Minute); err != nil {
			t.Fatalf("SetJSON(%s): %v", key, err)
		}
	}
	if err := c.Delete(ctx, AggregateKeys...); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	for _, key := range AggregateKeys {
		var out string
		if hit, _ := c.GetJSON(ctx, key, &out); hit {
			t.Errorf("key %s should be deleted", key)
		}
	}
}
