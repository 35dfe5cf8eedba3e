package ratelimit

import (
	"testing"
	"time"
)

func TestAllowFirstCall(t *testing.T) {
	l := New(100 * time.Millisecond)

	if !l.Allow("example.com") {
		t.Error("first call for a key should be allowed")
	}
}

func TestAllowWithinInterval(t *testing.T) {
	l := New(100 * time.Millisecond)

	l.Allow("example.com")
	if l.Allow("example.com") {
		t.Error("second call within interval should be denied")
	}
}

func TestAllowAfterInterval(t *testing.T) {
	l := New(10 * time.Millisecond)

	l.Allow("example.com")
	time.Sleep(20 * time.Millisecond)
	if !l.Allow("example.com") {
		t.Error("call after interval should be allowed")
	}
}

func TestAllowDifferentKeys(t *testing.T) {
	l := New(100 * time.Millisecond)

	if !l.Allow("a.example.com") {
		t.Error("first key should be allowed")
	}
	if !l.Allow("b.example.com") {
		t.Error("second key should be allowed independently")
	}
}

func TestWaitBlocksUntilInterval(t *testing.T) {
	interval := 50 * time.Millisecond
	l := New(interval)

	l.Wait("example.com")
	start := time.Now()
	l.Wait("example.com")
	elapsed := time.Since(start)

	if elapsed < interval-5*time.Millisecond {
		t.Errorf("Wait returned after %v, want at least %v", elapsed, interval)
	}
}

func TestWaitDoesNotBlockFirstCall(t *testing.T) {
	l := New(time.Second)

	start := time.Now()
	l.Wait("example.com")
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("first Wait blocked for %v, want immediate return", elapsed)
	}
}

func TestReset(t *testing.T) {
	l := New(time.Minute)

	l.Allow("example.com")
	l.Reset("example.com")
	if !l.Allow("example.com") {
		t.Error("call after Reset should be allowed")
	}
}

func TestResetAll(t *testing.T) {
	l := New(time.Minute)

	l.Allow("a.example.com")
	l.Allow("b.example.com")
	l.ResetAll()

	if !l.Allow("a.example.com") || !l.Allow("b.example.com") {
		t.Error("calls after ResetAll should be allowed")
	}
}

func TestConcurrentAccess(t *testing.T) {
	l := New(time.Millisecond)
	done := make(chan struct{})

	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				l.Allow("example.com")
			}
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
