package concurrent

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

func TestParallelMapPreservesOrder(t *testing.T) {
	items := make([]int, 50)
	for i := range items {
		items[i] = i
	}

	results, err := ParallelMap(context.Background(), items, func(n int) (string, error) {
		return strconv.Itoa(n * 2), nil
	}, 8)
	if err != nil {
		t.Fatalf("ParallelMap returned error: %v", err)
	}
	if len(results) != len(items) {
		t.Fatalf("expected %d results, got %d", len(items), len(results))
	}
	for i, got := range results {
		if want := strconv.Itoa(i * 2); got != want {
			t.Fatalf("result %d = %q, want %q", i, got, want)
		}
	}
}

func TestParallelMapReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	results, err := ParallelMap(context.Background(), []int{1, 2, 3, 4}, func(n int) (int, error) {
		if n == 3 {
			return 0, boom
		}
		return n, nil
	}, 2)
	if !errors.Is(err, boom) {
		t.Fatalf("expected the worker error, got %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("partial results must keep the input length, got %d", len(results))
	}
	if results[1] != 2 {
		t.Fatalf("successful siblings must still be present, got %d", results[1])
	}
}

func TestParallelMapRespectsConcurrencyBound(t *testing.T) {
	var inFlight, peak int64
	items := make([]int, 40)

	_, err := ParallelMap(context.Background(), items, func(int) (int, error) {
		cur := atomic.AddInt64(&inFlight, 1)
		for {
			p := atomic.LoadInt64(&peak)
			if cur <= p || atomic.CompareAndSwapInt64(&peak, p, cur) {
				break
			}
		}
		atomic.AddInt64(&inFlight, -1)
		return 0, nil
	}, 3)
	if err != nil {
		t.Fatalf("ParallelMap returned error: %v", err)
	}
	if atomic.LoadInt64(&peak) > 3 {
		t.Fatalf("observed %d workers in flight, bound is 3", peak)
	}
}

func TestParallelMapCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A single slow slot forces the remaining items to observe the
	// cancelled context instead of acquiring the semaphore.
	_, err := ParallelMap(ctx, []int{1, 2, 3, 4, 5, 6}, func(n int) (int, error) {
		time.Sleep(50 * time.Millisecond)
		return n, nil
	}, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestParallelMapEmptyInput(t *testing.T) {
	results, err := ParallelMap(context.Background(), nil, func(n int) (int, error) {
		return n, nil
	}, 4)
	if err != nil || results != nil {
		t.Fatalf("empty input should be a no-op, got %v, %v", results, err)
	}
}
