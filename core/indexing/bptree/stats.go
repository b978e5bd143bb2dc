package bptree

// Hooks receives structural events as the tree mutates. Implementations
// must be cheap; they run synchronously inside every mutation. The leaf
// argument distinguishes leaf events from internal-node events.
type Hooks interface {
	NodeAllocated(leaf bool)
	NodeFreed(leaf bool)
	SplitOccurred(leaf bool)
	MergeOccurred(leaf bool)
	RedistributeOccurred()
}

// NopHooks discards every event. It is the default for trees built
// without WithHooks.
type NopHooks struct{}

func (NopHooks) NodeAllocated(bool) {}
func (NopHooks) NodeFreed(bool) {}
func (NopHooks) SplitOccurred(bool) {}
func (NopHooks) MergeOccurred(bool) {}
func (NopHooks) RedistributeOccurred() {}

// Stats is an in-process Hooks implementation keeping plain counters.
// Like the tree itself it is not safe for concurrent use.
type Stats struct {
	LeafAllocs      int64
	InternalAllocs  int64
	LeafFrees       int64
	InternalFrees   int64
	LeafSplits      int64
	InternalSplits  int64
	LeafMerges      int64
	InternalMerges  int64
	Redistributions int64
}

func (s *Stats) NodeAllocated(leaf bool) {
	if leaf {
		s.LeafAllocs++
	} else {
		s.InternalAllocs++
	}
}

func (s *Stats) NodeFreed(leaf bool) {
	if leaf {
		s.LeafFrees++
	} else {
		s.InternalFrees++
	}
}

func (s *Stats) SplitOccurred(leaf bool) {
	if leaf {
		s.LeafSplits++
	} else {
		s.InternalSplits++
	}
}

func (s *Stats) MergeOccurred(leaf bool) {
	if leaf {
		s.LeafMerges++
	} else {
		s.InternalMerges++
	}
}

func (s *Stats) RedistributeOccurred() { s.Redistributions++ }

// Reset zeroes every counter.
func (s *Stats) Reset() { *s = Stats{} }

// LeafNodes returns the number of live leaves implied by the alloc and
// free counters.
func (s *Stats) LeafNodes() int64 { return s.LeafAllocs - s.LeafFrees }

// InternalNodes returns the number of live internal nodes implied by
// the alloc and free counters.
func (s *Stats) InternalNodes() int64 { return s.InternalAllocs - s.InternalFrees }

// MultiHooks fans every event out to each receiver in order.
type MultiHooks []Hooks

func (m MultiHooks) NodeAllocated(leaf bool) {
	for _, h := range m {
		h.NodeAllocated(leaf)
	}
}

func (m MultiHooks) NodeFreed(leaf bool) {
	for _, h := range m {
		h.NodeFreed(leaf)
	}
}

func (m MultiHooks) SplitOccurred(leaf bool) {
	for _, h := range m {
		h.SplitOccurred(leaf)
	}
}

func (m MultiHooks) MergeOccurred(leaf bool) {
	for _, h := range m {
		h.MergeOccurred(leaf)
	}
}

func (m MultiHooks) RedistributeOccurred() {
	for _, h := range m {
		h.RedistributeOccurred()
	}
}
