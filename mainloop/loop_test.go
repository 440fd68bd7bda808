package mainloop

import (
	"context"
	"sync"
	"testing"
	"time"
)

func startLoop(t *testing.T) (*Loop, context.CancelFunc) {
	t.Helper()
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return l, cancel
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for loop")
	}
}

func TestPostRunsInOrder(t *testing.T) {
	l, _ := startLoop(t)

	var got []int
	done := make(chan struct{})
	for i := 0; i < 100; i++ {
		l.Post(func() { got = append(got, i) })
	}
	l.Post(func() { close(done) })
	waitFor(t, done)

	if len(got) != 100 {
		t.Fatalf("ran %d functions, want 100", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("position %d ran %d", i, v)
		}
	}
}

func TestPostDoesNotBlockWithoutRunner(t *testing.T) {
	l := New()
	for i := 0; i < 10000; i++ {
		l.Post(func() {})
	}
	if l.Pending() != 10000 {
		t.Errorf("pending = %d, want 10000", l.Pending())
	}
}

func TestPostFromManyGoroutines(t *testing.T) {
	l, _ := startLoop(t)

	var mu sync.Mutex
	count := 0
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				l.Post(func() {
					mu.Lock()
					count++
					mu.Unlock()
				})
			}
		}()
	}
	wg.Wait()

	done := make(chan struct{})
	l.Post(func() { close(done) })
	waitFor(t, done)

	mu.Lock()
	defer mu.Unlock()
	if count != 800 {
		t.Errorf("count = %d, want 800", count)
	}
}

func TestPanicDoesNotStopLoop(t *testing.T) {
	l, _ := startLoop(t)

	done := make(chan struct{})
	l.Post(func() { panic("boom") })
	l.Post(func() { close(done) })
	waitFor(t, done)

	if l.Panics() != 1 {
		t.Errorf("panics = %d, want 1", l.Panics())
	}
}

func TestPostAfterRunReturns(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l.Run(ctx)

	l.Post(func() { t.Error("ran after loop exit") })
	if l.Pending() != 0 {
		t.Errorf("pending = %d after close, want 0", l.Pending())
	}
}
