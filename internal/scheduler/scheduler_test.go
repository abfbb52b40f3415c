package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semmy-space/auth/internal/reconcile"
	"github.com/semmy-space/auth/internal/vault"
)

type memBackend struct{}

func (memBackend) Load() (map[string]string, error) { return map[string]string{}, nil }
func (memBackend) Save(map[string]string) error     { return nil }
func (memBackend) Location() string                 { return "memory" }

func newStore(t *testing.T, entries map[string]string) *vault.Store {
	t.Helper()
	s := vault.New(memBackend{})
	require.NoError(t, s.Load())
	if len(entries) > 0 {
		s.Merge(entries)
	}
	return s
}

func TestTickEmitsUpsertsAndRemoves(t *testing.T) {
	store := newStore(t, map[string]string{"a": "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ", "b": "JBSWY3DPEHPK3PXP"})
	var batches [][]reconcile.Op
	s := New(store, func(ops []reconcile.Op) { batches = append(batches, ops) })

	ops := s.Tick(time.Unix(59, 0))
	require.Len(t, ops, 2)
	assert.Equal(t, "287082", ops[0].Code)
	assert.Equal(t, uint64(1), ops[0].Remaining)

	store.Remove("a")
	ops = s.Tick(time.Unix(60, 0))
	require.Len(t, ops, 2)
	assert.Equal(t, reconcile.Op{Kind: reconcile.Upsert, Name: "b", Code: "602287", Remaining: 30}, ops[0])
	assert.Equal(t, reconcile.Op{Kind: reconcile.Remove, Name: "a"}, ops[1])

	require.Len(t, batches, 2)
	assert.Len(t, s.Rows(), 1)
}

func TestTickIsIdempotent(t *testing.T) {
	store := newStore(t, map[string]string{"a": "JBSWY3DPEHPK3PXP"})
	s := New(store, nil)

	first := s.Tick(time.Unix(100, 0))
	second := s.Tick(time.Unix(100, 0))

	assert.Equal(t, first, second)
}

func TestTickSkipsSinkWhenNothingToDo(t *testing.T) {
	store := newStore(t, nil)
	called := false
	s := New(store, func([]reconcile.Op) { called = true })

	assert.Empty(t, s.Tick(time.Unix(0, 0)))
	assert.False(t, called)
}

func TestTickLeavesEditedRowAlone(t *testing.T) {
	store := newStore(t, map[string]string{"a": "JBSWY3DPEHPK3PXP"})
	s := New(store, nil)
	s.Tick(time.Unix(0, 0))

	require.NoError(t, store.BeginEdit("a"))
	assert.Empty(t, s.Tick(time.Unix(45, 0)))

	row, ok := func() (reconcile.Row, bool) {
		for _, r := range s.Rows() {
			if r.Name == "a" {
				return r, true
			}
		}
		return reconcile.Row{}, false
	}()
	require.True(t, ok)
	assert.Equal(t, "282760", row.Code, "row keeps the code from before the edit")
}

func TestRunStopsOnCancel(t *testing.T) {
	store := newStore(t, map[string]string{"a": "JBSWY3DPEHPK3PXP"})
	var mu sync.Mutex
	ticks := 0
	s := New(store, func([]reconcile.Op) {
		mu.Lock()
		ticks++
		mu.Unlock()
	}, WithInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return ticks >= 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWithIntervalIgnoresNonPositive(t *testing.T) {
	s := New(newStore(t, nil), nil, WithInterval(0))
	assert.Equal(t, DefaultInterval, s.Interval())
}
