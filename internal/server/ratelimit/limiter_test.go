package ratelimit

import (
	"sync"
	"testing"
)

func TestAllow_BurstExhaustion(t *testing.T) {
	t.Parallel()

	l := NewKeyedLimiter(1, 2)

	if !l.Allow("192.0.2.1") {
		t.Fatalf("first request should pass")
	}
	if !l.Allow("192.0.2.1") {
		t.Fatalf("second request within burst should pass")
	}
	if l.Allow("192.0.2.1") {
		t.Fatalf("third request should be throttled")
	}
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	t.Parallel()

	l := NewKeyedLimiter(1, 1)

	if !l.Allow("192.0.2.1") {
		t.Fatalf("first key should pass")
	}
	if !l.Allow("192.0.2.2") {
		t.Fatalf("second key should have its own bucket")
	}
	if l.Allow("192.0.2.1") {
		t.Fatalf("first key should be throttled")
	}
}

func TestAllow_Concurrent(t *testing.T) {
	t.Parallel()

	l := NewKeyedLimiter(1000, 1000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				l.Allow("shared")
			}
		}()
	}
	wg.Wait()
}
