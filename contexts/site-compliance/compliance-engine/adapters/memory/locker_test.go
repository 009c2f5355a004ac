package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestKeyedLockerSerializesSameKey(t *testing.T) {
	locker := NewKeyedLocker()
	var inside int32
	var maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Lock(context.Background(), "municipality:alder", "municipality:birch")
			if err != nil {
				t.Errorf("lock failed: %v", err)
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				current := atomic.LoadInt32(&maxInside)
				if n <= current || atomic.CompareAndSwapInt32(&maxInside, current, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()
	if maxInside != 1 {
		t.Fatalf("expected exclusive access, saw %d holders", maxInside)
	}
}

func TestKeyedLockerHonoursContext(t *testing.T) {
	locker := NewKeyedLocker()
	release, err := locker.Lock(context.Background(), "municipality:alder")
	if err != nil {
		t.Fatalf("lock failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := locker.Lock(ctx, "municipality:birch", "municipality:alder"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	// The failed attempt must not leave birch held.
	other, err := locker.Lock(context.Background(), "municipality:birch")
	if err != nil {
		t.Fatalf("lock birch failed: %v", err)
	}
	other()
	release()
	release()

	again, err := locker.Lock(context.Background(), "municipality:alder")
	if err != nil {
		t.Fatalf("relock failed: %v", err)
	}
	again()
}
