package dispatch

import (
	"errors"
	"runtime"
	"sync"
)

var ErrRuntimeClosed = errors.New("host runtime closed")

// Runtime is the host environment a sink lives in.
type Runtime interface {
	// Enter resolves the calling thread's attachment to the host, establishing
	// one when missing. fresh reports whether this call established it.
	Enter() (fresh bool, err error)
	// Exit undoes Enter. It releases the attachment only when fresh is true.
	Exit(fresh bool)
}

// NopRuntime is used when the host needs no thread attachment.
type NopRuntime struct{}

func (NopRuntime) Enter() (bool, error) { return false, nil }
func (NopRuntime) Exit(bool)            {}

// ThreadRuntime tracks which OS threads are attached to the host. A delivery
// pins its goroutine to the current thread for the duration of the call.
type ThreadRuntime struct {
	mu       sync.Mutex
	attached map[int]struct{}
	closed   bool
}

func NewThreadRuntime() *ThreadRuntime {
	return &ThreadRuntime{attached: make(map[int]struct{})}
}

func (r *ThreadRuntime) Enter() (bool, error) {
	runtime.LockOSThread()
	tid := threadID()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		runtime.UnlockOSThread()
		return false, ErrRuntimeClosed
	}
	if _, ok := r.attached[tid]; ok {
		return false, nil
	}
	r.attached[tid] = struct{}{}
	return true, nil
}

func (r *ThreadRuntime) Exit(fresh bool) {
	if fresh {
		tid := threadID()
		r.mu.Lock()
		delete(r.attached, tid)
		r.mu.Unlock()
	}
	runtime.UnlockOSThread()
}

// AttachCurrentThread attaches the calling thread until DetachCurrentThread.
// The caller must have locked its goroutine to the thread.
func (r *ThreadRuntime) AttachCurrentThread() {
	r.mu.Lock()
	r.attached[threadID()] = struct{}{}
	r.mu.Unlock()
}

func (r *ThreadRuntime) DetachCurrentThread() {
	r.mu.Lock()
	delete(r.attached, threadID())
	r.mu.Unlock()
}

// Attached reports whether the calling thread is attached.
func (r *ThreadRuntime) Attached() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.attached[threadID()]
	return ok
}

// Len returns the number of attached threads.
func (r *ThreadRuntime) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.attached)
}

// Close rejects further attachments.
func (r *ThreadRuntime) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}
