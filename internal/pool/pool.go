package pool

import "sync"


//============================================= scratch stack pool


// FramePool recycles the depth-first iterator's scratch stack slices,
// adapted from the teacher's MMCMapNodePool. Unlike the teacher's pool —
// which recycled trie nodes themselves, safe only because the teacher's
// refcounted mmap design frees a node the instant nothing references it —
// this pool never touches a node: trie nodes here are shared across
// however many Map versions happen to be alive, and only Go's GC knows
// when the last one drops a reference. Recycling a node through a free
// list in that world would hand a still-referenced node back out as
// "available," corrupting an older Map. The stack slices below have no
// such problem: a scratch stack belongs to exactly one Iterator and is
// only ever reused after that Iterator is done with it.
type FramePool[T any] struct {
	maxSize int
	size    int
	mu      sync.Mutex
	pool    *sync.Pool
}

// New creates a pool that holds on to at most maxSize recycled stacks.
func New[T any](maxSize int) *FramePool[T] {
	fp := &FramePool[T]{
		maxSize: maxSize,
		pool: &sync.Pool{
			New: func() any {
				return make([]T, 0, 8)
			},
		},
	}
	return fp
}

// Get returns a zero-length stack with spare capacity, either recycled or
// freshly allocated.
func (fp *FramePool[T]) Get() []T {
	fp.mu.Lock()
	if fp.size > 0 {
		fp.size--
	}
	fp.mu.Unlock()

	return fp.pool.Get().([]T)[:0]
}

// Put returns a stack to the pool for reuse, dropping it if the pool is at
// capacity so it's left for the garbage collector instead.
func (fp *FramePool[T]) Put(stack []T) {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	if fp.size >= fp.maxSize {
		return
	}

	fp.size++
	fp.pool.Put(stack) //nolint:staticcheck // intentionally retaining backing array for reuse
}
