package digest

import (
	"testing"
	"time"
)

func TestLockSetAcquireRelease(t *testing.T) {
	locks := newLockSet(time.Minute)

	if !locks.TryAcquire("u1") {
		t.Fatal("first acquire should succeed")
	}
	if locks.TryAcquire("u1") {
		t.Error("second acquire while held should fail")
	}
	if !locks.TryAcquire("u2") {
		t.Error("different key should acquire independently")
	}

	locks.Release("u1")
	if !locks.TryAcquire("u1") {
		t.Error("acquire after release should succeed")
	}
}

func TestLockSetReleaseUnheld(t *testing.T) {
	locks := newLockSet(time.Minute)
	locks.Release("never-held")
}

func TestLockSetExpiredLockReclaimed(t *testing.T) {
	locks := newLockSet(10 * time.Millisecond)

	locks.TryAcquire("u1")
	time.Sleep(20 * time.Millisecond)

	if !locks.TryAcquire("u1") {
		t.Error("expired lock should be reclaimable")
	}
}

func TestLockSetSweepExpired(t *testing.T) {
	locks := newLockSet(10 * time.Millisecond)

	locks.TryAcquire("u1")
	locks.TryAcquire("u2")
	time.Sleep(20 * time.Millisecond)
	locks.TryAcquire("u3")

	if removed := locks.sweepExpired(); removed != 2 {
		t.Errorf("sweep removed %d locks, want 2", removed)
	}
	if locks.TryAcquire("u3") {
		t.Error("fresh lock should survive the sweep")
	}
}
