package common

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/devlights/gomy/output"
	"github.com/sasha-s/go-deadlock"
)

func SH_Assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}

// ExclusionLock is a mutex which also knows whether it is held.
// File managers guard every physical transfer with one of these, so holding it
// means "a transfer is in flight".
type ExclusionLock struct {
	mutex    sync.Locker
	inFlight int32
}

var deadlockOptsOnce sync.Once

// NewExclusionLock returns a plain mutex based lock, or a deadlock detecting one
// when EnableDebug is set.
func NewExclusionLock() *ExclusionLock {
	if !EnableDebug {
		return &ExclusionLock{mutex: new(sync.Mutex)}
	}
	deadlockOptsOnce.Do(func() {
		deadlock.Opts.DeadlockTimeout = DeadlockTimeout
		deadlock.Opts.OnPotentialDeadlock = func() {
			ShPrintf(FATAL, "exclusion lock wait exceeded %v\n", DeadlockTimeout)
			RuntimeStack()
			panic("potential deadlock on exclusion lock")
		}
	})
	return &ExclusionLock{mutex: new(deadlock.Mutex)}
}

func (l *ExclusionLock) Lock() {
	l.mutex.Lock()
	SH_Assert(atomic.AddInt32(&l.inFlight, 1) == 1, "ExclusionLock is already held")
}

func (l *ExclusionLock) Unlock() {
	SH_Assert(atomic.AddInt32(&l.inFlight, -1) == 0, "ExclusionLock is not held")
	l.mutex.Unlock()
}

// IsLocked reports whether some goroutine holds the lock now.
func (l *ExclusionLock) IsLocked() bool {
	return atomic.LoadInt32(&l.inFlight) > 0
}

// REFERENCES
//   - https://pkg.go.dev/runtime#Stack
//   - https://stackoverflow.com/questions/19094099/how-to-dump-goroutine-stacktraces
func RuntimeStack() error {
	// channels
	var (
		chAll = make(chan []byte, 1)
	)

	// funcs
	var (
		getStack = func(all bool) []byte {
			// From src/runtime/debug/stack.go
			var (
				buf = make([]byte, 1024)
			)

			for {
				n := runtime.Stack(buf, all)
				if n < len(buf) {
					return buf[:n]
				}
				buf = make([]byte, 2*len(buf))
			}
		}
	)

	// all goroutin
	go func(ch chan<- []byte) {
		defer close(ch)
		ch <- getStack(true)
	}(chAll)

	// result of runtime.Stack(true)
	for v := range chAll {
		output.Stdoutl("=== stack-all   ", string(v))
	}

	return nil
}
