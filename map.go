// Package linktable implements an intrusive chained hash table with
// incremental doubling and halving of its bucket array.
//
// The table never allocates or frees entry memory. Callers embed a Node
// inside their own record type and hand the table pointers to it; the
// table owns only the linkage between nodes and its bucket array. This
// makes it suitable as a building block inside larger structures where
// per-entry allocations would hurt.
//
// Not safe for concurrent use. Wrap it in a lock if you need that.
package linktable

// Node is the link header that callers embed inside their own records.
// Embed it as the first field if you want to convert a *Node back into
// your record with a plain unsafe.Pointer cast.
//
// The zero value is ready to be inserted. A Node must not be inserted
// into more than one table (or twice into the same one) at a time.
type Node struct {
	// hash is cached at insertion time and never recomputed. Growing
	// and shrinking redistribute nodes by looking at single bits of it.
	hash uint64
	next *Node
}

// Must be a power of two.
const minSlots = 16

// Map stores caller-owned nodes keyed by K. Hashing and key equality
// are injected at construction; the table itself never looks inside a
// record.
type Map[K any] struct {
	buckets []*Node // len is always a power of two, >= minSlots
	count   int
	hash    func(K) uint64
	match   func(*Node, K) bool
}

// New makes an empty table.
//
// hash must be deterministic for a given key's content. Distribution
// quality is your problem: a bad hash only makes chains long, it never
// breaks correctness.
//
// match is called on nodes that already share a bucket with the key and
// must decide true key equality. Comparing the cached hashes is not
// enough, that's the collision case match exists for.
func New[K any](hash func(K) uint64, match func(n *Node, k K) bool) *Map[K] {
	return &Map[K]{
		buckets: make([]*Node, minSlots),
		hash:    hash,
		match:   match,
	}
}

// Len returns the number of nodes currently in the table.
func (m *Map[K]) Len() int {
	return m.count
}

// Get returns the first node in k's bucket for which match says yes, or
// nil. With duplicate keys inserted, "first" means most recently
// inserted, see Insert.
func (m *Map[K]) Get(k K) *Node {
	n := m.buckets[m.hash(k)&uint64(len(m.buckets)-1)]
	for n != nil {
		if m.match(n, k) {
			return n
		}
		n = n.next
	}
	return nil
}

// Insert links n into the table under k. The key's hash is computed
// once here and cached in the node for the rest of its linked life.
//
// Insert does not check for an existing node with an equal key.
// Inserting duplicates is allowed; the newest one shadows the older
// ones in Get until it is removed. Check with Get first if you need
// uniqueness.
func (m *Map[K]) Insert(n *Node, k K) {
	n.hash = m.hash(k)
	slot := n.hash & uint64(len(m.buckets)-1)
	n.next = m.buckets[slot]
	m.buckets[slot] = n
	m.count++

	if m.count > len(m.buckets)*3 {
		m.grow()
	}
}

// Remove unlinks and returns the first node matching k, or nil if there
// is none. The returned node is fully the caller's again; it keeps no
// reference into the table and the table keeps none to it.
func (m *Map[K]) Remove(k K) *Node {
	slot := m.hash(k) & uint64(len(m.buckets)-1)
	var prev *Node
	for n := m.buckets[slot]; n != nil; n = n.next {
		if !m.match(n, k) {
			prev = n
			continue
		}
		if prev != nil {
			prev.next = n.next
		} else {
			m.buckets[slot] = n.next
		}
		n.next = nil
		m.count--

		if m.count < len(m.buckets)/4 && len(m.buckets) > minSlots {
			m.shrink()
		}
		return n
	}
	return nil
}

// Reset detaches the table from all of its nodes and shrinks the bucket
// array back to the minimum size. The nodes themselves are not touched;
// any that the caller still holds simply aren't in a table anymore.
func (m *Map[K]) Reset() {
	m.buckets = make([]*Node, minSlots)
	m.count = 0
}

// Iterate calls fn for every node in the table until fn returns false.
//
// Iteration order is unspecified and unstable: every grow reverses the
// chains it splits. Don't insert or remove while iterating.
func (m *Map[K]) Iterate(fn func(*Node) bool) {
	for _, n := range m.buckets {
		for n != nil {
			next := n.next
			if !fn(n) {
				return
			}
			n = next
		}
	}
}

// grow doubles the bucket array. Every node in old bucket i belongs at
// either i or i+oldLen in the doubled array, decided solely by bit
// oldLen of its cached hash, so no hash is ever recomputed. Splitting a
// chain reverses it, which is fine, chain order is never promised.
func (m *Map[K]) grow() {
	oldLen := len(m.buckets)
	table := make([]*Node, oldLen*2)

	for i := 0; i < oldLen; i++ {
		var lower, upper *Node
		n := m.buckets[i]
		for n != nil {
			next := n.next
			if n.hash&uint64(oldLen) != 0 {
				n.next = upper
				upper = n
			} else {
				n.next = lower
				lower = n
			}
			n = next
		}
		table[i] = lower
		table[i+oldLen] = upper
	}
	m.buckets = table
}

// shrink halves the bucket array. Chains i and i+newLen agree on the
// low newLen bits of their hashes, so appending the upper chain to the
// lower one keeps every node addressable at the halved length. The
// merge happens in place first; only then do the heads move to a
// half-size array so the old one can be collected.
func (m *Map[K]) shrink() {
	newLen := len(m.buckets) / 2
	for i := 0; i < newLen; i++ {
		upper := m.buckets[i+newLen]
		if upper == nil {
			continue
		}
		tail := m.buckets[i]
		if tail == nil {
			m.buckets[i] = upper
			continue
		}
		for tail.next != nil {
			tail = tail.next
		}
		tail.next = upper
	}

	table := make([]*Node, newLen)
	copy(table, m.buckets)
	m.buckets = table
}
