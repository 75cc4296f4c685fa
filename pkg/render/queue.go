package render

// workQueue is a FIFO used for transient per-draw-call work items.
// It replaces ad-hoc fixed-size scratch arrays with a single generic
// container shared by the clipping passes.
type workQueue[T any] struct {
	items []T
	head  int
}

func (q *workQueue[T]) push(v T) {
	q.items = append(q.items, v)
}

func (q *workQueue[T]) pop() (T, bool) {
	var zero T
	if q.head >= len(q.items) {
		return zero, false
	}
	v := q.items[q.head]
	q.head++
	return v, true
}

func (q *workQueue[T]) len() int {
	return len(q.items) - q.head
}

func (q *workQueue[T]) reset() {
	q.items = q.items[:0]
	q.head = 0
}
