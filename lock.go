package fennecs

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
)

// structuralLock is the World's single-writer/many-reader guard (spec §5).
// Every Query iteration acquires it for reading over the whole iteration;
// every structural mutation (spawn, despawn, add/remove component,
// archetype creation) acquires it for writing.
type structuralLock struct {
	mu          sync.RWMutex
	readers     sync.Map // goroutine id -> nesting depth, for the currently-iterating goroutines
	readerCount int32
}

func newStructuralLock() *structuralLock {
	return &structuralLock{}
}

// ReadGuard is held for the duration of one iteration. End must run on
// every exit path, including panics, which is why callers defer it
// immediately after beginRead succeeds.
type ReadGuard struct {
	lock *structuralLock
	gid  uint64
}

func (l *structuralLock) beginRead() ReadGuard {
	l.mu.RLock()
	atomic.AddInt32(&l.readerCount, 1)
	gid := currentGoroutineID()
	depth, _ := l.readers.Load(gid)
	d, _ := depth.(int)
	l.readers.Store(gid, d+1)
	return ReadGuard{lock: l, gid: gid}
}

// End releases the read lock. Safe to call exactly once per ReadGuard.
func (g ReadGuard) End() {
	depth, _ := g.lock.readers.Load(g.gid)
	d, _ := depth.(int)
	if d <= 1 {
		g.lock.readers.Delete(g.gid)
	} else {
		g.lock.readers.Store(g.gid, d-1)
	}
	atomic.AddInt32(&g.lock.readerCount, -1)
	g.lock.mu.RUnlock()
}

// ScopedGuard is the write guard returned by World.Lock (spec §6). Unlock
// must be called exactly once, normally via defer.
type ScopedGuard struct {
	lock *structuralLock
}

// Unlock releases the write lock.
func (g ScopedGuard) Unlock() {
	g.lock.mu.Unlock()
}

// beginWrite acquires the lock for a structural mutation named op (used in
// the error message if the attempt is rejected). When Config.DebugAssertions
// is set and the calling goroutine already holds a read lock of its own
// (i.e. this call originates from inside that goroutine's own iteration
// callback), beginWrite refuses instead of blocking forever on itself —
// this is the spec §5 "best-effort" detection of a forbidden structural
// mutation during iteration. A write attempt from some other, non-iterating
// goroutine blocks normally until the readers drain.
func (l *structuralLock) beginWrite(op string) (ScopedGuard, error) {
	if Config.DebugAssertions {
		if _, iterating := l.readers.Load(currentGoroutineID()); iterating {
			return ScopedGuard{}, StructuralMutationDuringIterationError{Op: op}
		}
	}
	l.mu.Lock()
	return ScopedGuard{lock: l}, nil
}

// currentGoroutineID parses the calling goroutine's id out of its own stack
// trace header. It exists solely to back the debug assertion above; nothing
// about core correctness depends on it.
func currentGoroutineID() uint64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	buf = buf[:n]
	buf = bytes.TrimPrefix(buf, []byte("goroutine "))
	if i := bytes.IndexByte(buf, ' '); i >= 0 {
		if id, err := strconv.ParseUint(string(buf[:i]), 10, 64); err == nil {
			return id
		}
	}
	return 0
}
