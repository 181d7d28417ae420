package variant

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	_ "modernc.org/sqlite"
)

type countingSource struct {
	calls   int
	variant *HgvsVariant
	err     error
}

func (s *countingSource) Validate(ctx context.Context, hgvs, transcript string) (*HgvsVariant, error) {
	s.calls++
	return s.variant, s.err
}

func TestCacheCallsSourceAtMostOncePerKey(t *testing.T) {
	src := &countingSource{variant: &HgvsVariant{Assembly: "hg38", Symbol: "FBN1"}}
	cache, err := NewCache(src, 16, nil, nil)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		got, err := cache.Validate(ctx, "c.8230C>T", "NM_000138.5")
		if err != nil {
			t.Fatalf("validate: %v", err)
		}
		if got.Symbol != "FBN1" {
			t.Fatalf("unexpected variant: %+v", got)
		}
	}
	if src.calls != 1 {
		t.Fatalf("expected 1 source call, got %d", src.calls)
	}
	if _, err := cache.Validate(ctx, "c.1A>C", "NM_000138.5"); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if src.calls != 2 {
		t.Fatalf("expected 2 source calls after new key, got %d", src.calls)
	}
}

func TestCacheMemoizesFailures(t *testing.T) {
	src := &countingSource{err: errors.New("Variant reference (G) does not agree with reference sequence (C)")}
	cache, err := NewCache(src, 16, nil, nil)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := cache.Validate(ctx, "c.8230G>T", "NM_000138.5")
		if err == nil || err.Error() != src.err.Error() {
			t.Fatalf("expected memoized failure, got %v", err)
		}
	}
	if src.calls != 1 {
		t.Fatalf("expected 1 source call, got %d", src.calls)
	}
}

func TestCachePersistsAcrossInstances(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	src := &countingSource{variant: &HgvsVariant{Assembly: "hg38", Symbol: "ZSWIM6", VCF: VCF{Chrom: "chr5", Pos: 61544206, Ref: "C", Alt: "T"}}}
	first, err := NewCache(src, 16, db, nil)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	if _, err := first.Validate(ctx, "c.2737C>T", "NM_020928.2"); err != nil {
		t.Fatalf("validate: %v", err)
	}

	// A fresh instance over the same database must answer from disk.
	second, err := NewCache(src, 16, db, nil)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	got, err := second.Validate(ctx, "c.2737C>T", "NM_020928.2")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got.VCF.Pos != 61544206 || got.Symbol != "ZSWIM6" {
		t.Fatalf("unexpected variant from disk: %+v", got)
	}
	if src.calls != 1 {
		t.Fatalf("expected 1 source call across instances, got %d", src.calls)
	}
}

func TestCacheMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	src := &countingSource{variant: &HgvsVariant{Assembly: "hg38"}}
	cache, err := NewCache(src, 16, nil, metrics)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	ctx := context.Background()
	_, _ = cache.Validate(ctx, "c.1A>C", "NM_1.1")
	_, _ = cache.Validate(ctx, "c.1A>C", "NM_1.1")
	if got := testutil.ToFloat64(metrics.Misses); got != 1 {
		t.Fatalf("expected 1 miss, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.Hits); got != 1 {
		t.Fatalf("expected 1 hit, got %v", got)
	}
}
