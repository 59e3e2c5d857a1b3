package fennecs

import (
	"testing"
	"time"
)

func TestStructuralLockWriterWaitsForReaders(t *testing.T) {
	l := newStructuralLock()
	guard := l.beginRead()

	done := make(chan struct{})
	go func() {
		w, err := l.beginWrite("test")
		if err != nil {
			t.Errorf("beginWrite from a different goroutine should not be rejected: %v", err)
			close(done)
			return
		}
		w.Unlock()
		close(done)
	}()

	select {
	case <-done:
		t.Fatalf("writer from another goroutine should block until the reader ends")
	case <-time.After(30 * time.Millisecond):
	}

	guard.End()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("writer never acquired the lock after the reader ended")
	}
}

func TestStructuralLockRejectsReentrantWrite(t *testing.T) {
	Config.SetDebugAssertions(true)
	l := newStructuralLock()
	guard := l.beginRead()
	defer guard.End()

	_, err := l.beginWrite("test")
	if err == nil {
		t.Fatalf("expected rejection of a write attempted from within the same goroutine's read")
	}
	if _, ok := err.(StructuralMutationDuringIterationError); !ok {
		t.Fatalf("expected StructuralMutationDuringIterationError, got %T", err)
	}
}
