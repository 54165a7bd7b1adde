package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	ctx := context.Background()

	m.OnSaveComplete(ctx, time.Millisecond, nil)
	m.OnSaveComplete(ctx, time.Millisecond, errors.New("disk full"))
	m.OnSaveComplete(ctx, time.Millisecond, nil)
	m.OnStatus(ctx, "ready")
	m.OnCacheHit(ctx, "generate")
	m.OnCacheMiss(ctx, "generate")
	m.OnGenerateComplete(ctx, "enhance", 5, 2*time.Second, nil)
	m.OnResponse(ctx, "POST", "svc", "/generate/full", 200, time.Second)
	m.OnError(ctx, "POST", "svc", "/generate/full", errors.New("refused"))

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"saves ok", testutil.ToFloat64(m.saves.WithLabelValues("ok")), 2},
		{"saves error", testutil.ToFloat64(m.saves.WithLabelValues("error")), 1},
		{"status ready", testutil.ToFloat64(m.statuses.WithLabelValues("ready")), 1},
		{"cache hit", testutil.ToFloat64(m.cache.WithLabelValues("generate", "hit")), 1},
		{"cache miss", testutil.ToFloat64(m.cache.WithLabelValues("generate", "miss")), 1},
		{"http errors", testutil.ToFloat64(m.httpErrors.WithLabelValues("POST", "/generate/full")), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	if n := testutil.CollectAndCount(m.generations); n != 1 {
		t.Errorf("generation series = %d, want 1", n)
	}
}

func TestMetricsInstall(t *testing.T) {
	defer Reset()
	m := NewMetrics(prometheus.NewRegistry())
	m.Install()
	if Pipeline() != PipelineHooks(m) || Cache() != CacheHooks(m) || HTTP() != HTTPHooks(m) {
		t.Error("Install() should register m for every hook category")
	}
}
