package search

// item is one scan candidate: a matrix row and its cosine score.
type item struct {
	row   int
	score float32
}

// worse reports whether a ranks below b: lower score, or equal score
// and higher row. The row tie-break keeps results deterministic.
func worse(a, b item) bool {
	if a.score != b.score {
		return a.score < b.score
	}
	return a.row > b.row
}

// topK is a bounded min-heap over scores. The root is the weakest
// candidate kept so far, so a full heap admits a better item by
// replacing the root. Value-based storage, no container/heap boxing.
type topK struct {
	k     int
	items []item
}

func newTopK(k int) *topK {
	return &topK{
		k:     k,
		items: make([]item, 0, k),
	}
}

// push considers it for the result set.
func (q *topK) push(it item) {
	if len(q.items) < q.k {
		q.items = append(q.items, it)
		q.siftUp(len(q.items) - 1)
		return
	}
	if worse(it, q.items[0]) {
		return
	}
	q.items[0] = it
	q.siftDown(0)
}

// merge folds every candidate of other into q.
func (q *topK) merge(other *topK) {
	for _, it := range other.items {
		q.push(it)
	}
}

// siftUp moves the element at index i toward the root until the heap
// invariant is restored.
func (q *topK) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !worse(q.items[i], q.items[parent]) {
			break
		}
		q.items[i], q.items[parent] = q.items[parent], q.items[i]
		i = parent
	}
}

// siftDown moves the element at index i away from the root until the
// heap invariant is restored.
func (q *topK) siftDown(i int) {
	n := len(q.items)
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		child := left
		if right := left + 1; right < n && worse(q.items[right], q.items[left]) {
			child = right
		}
		if !worse(q.items[child], q.items[i]) {
			break
		}
		q.items[i], q.items[child] = q.items[child], q.items[i]
		i = child
	}
}
