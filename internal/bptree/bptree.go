package bptree

import "sort"

// DefaultFanout is the maximum number of children an internal node may
// have, and one more than the maximum number of keys a leaf may hold.
const DefaultFanout = 64

type kind uint8

const (
	leafKind kind = iota
	internalKind
)

type node struct {
	kind kind

	keys []uint64

	// leaf fields
	values []uint64
	next   int // index of the next leaf in key order, -1 if none

	// internal fields
	children []int
}

// Pair is a (key, row index) entry returned by a range query.
type Pair struct {
	Key   uint64
	Value uint64
}

// Tree is an arena-addressed B+ tree mapping uint64 keys to uint64 row
// indices. It is not safe for concurrent use; callers must serialize
// Insert against RangeQuery themselves (the database does this with its
// query lock).
type Tree struct {
	fanout int
	nodes  []node
	root   int
	count  int
}

// New returns an empty tree with the given fanout. A fanout below 3 is
// rounded up, since a B+ tree node needs room to split.
func New(fanout int) *Tree {
	if fanout < 3 {
		fanout = 3
	}
	t := &Tree{fanout: fanout}
	t.root = t.newLeaf()
	return t
}

func (t *Tree) newLeaf() int {
	t.nodes = append(t.nodes, node{kind: leafKind, next: -1})
	return len(t.nodes) - 1
}

func (t *Tree) newInternal() int {
	t.nodes = append(t.nodes, node{kind: internalKind})
	return len(t.nodes) - 1
}

func (t *Tree) maxLeafKeys() int     { return t.fanout - 1 }
func (t *Tree) maxInternalKeys() int { return t.fanout - 1 }

// Len returns the number of keys stored in the tree.
func (t *Tree) Len() int { return t.count }

// upperBound returns the number of elements of keys that are <= key, i.e.
// the index of the first element greater than key.
func upperBound(keys []uint64, key uint64) int {
	return sort.Search(len(keys), func(i int) bool { return keys[i] > key })
}

// descend walks from the root to the leaf that should contain key,
// recording the internal nodes visited along the way.
func (t *Tree) descend(key uint64) (path []int, leafIdx int) {
	cur := t.root
	for t.nodes[cur].kind == internalKind {
		path = append(path, cur)
		n := t.nodes[cur]
		i := upperBound(n.keys, key)
		cur = n.children[i]
	}
	return path, cur
}

// findLeaf walks from the root to the leftmost leaf that may contain key,
// without recording the path. It descends left of a separator equal to key,
// since a split can leave copies of a duplicated key on both sides of it.
// Used by range scans, which never insert.
func (t *Tree) findLeaf(key uint64) int {
	cur := t.root
	for t.nodes[cur].kind == internalKind {
		n := t.nodes[cur]
		i := sort.Search(len(n.keys), func(i int) bool { return n.keys[i] >= key })
		cur = n.children[i]
	}
	return cur
}

// Insert adds key -> value to the tree. Duplicate keys are permitted and
// kept in insertion order among equal keys, which preserves row order for
// ticks sharing a timestamp.
func (t *Tree) Insert(key, value uint64) {
	path, leafIdx := t.descend(key)

	leaf := &t.nodes[leafIdx]
	pos := sort.Search(len(leaf.keys), func(i int) bool { return leaf.keys[i] > key })
	leaf.keys = insertAt(leaf.keys, pos, key)
	leaf.values = insertAt(leaf.values, pos, value)
	t.count++

	if len(t.nodes[leafIdx].keys) > t.maxLeafKeys() {
		t.splitLeaf(leafIdx, path)
	}
}

// splitLeaf splits an overflowing leaf in two and propagates the new
// separator key up the recorded descent path.
func (t *Tree) splitLeaf(leafIdx int, path []int) {
	oldKeys := t.nodes[leafIdx].keys
	oldValues := t.nodes[leafIdx].values
	mid := len(oldKeys) / 2

	leftKeys := append([]uint64(nil), oldKeys[:mid]...)
	leftValues := append([]uint64(nil), oldValues[:mid]...)
	rightKeys := append([]uint64(nil), oldKeys[mid:]...)
	rightValues := append([]uint64(nil), oldValues[mid:]...)

	newLeafIdx := t.newLeaf()

	t.nodes[leafIdx].keys = leftKeys
	t.nodes[leafIdx].values = leftValues
	t.nodes[newLeafIdx].keys = rightKeys
	t.nodes[newLeafIdx].values = rightValues
	t.nodes[newLeafIdx].next = t.nodes[leafIdx].next
	t.nodes[leafIdx].next = newLeafIdx

	separator := rightKeys[0]
	t.insertIntoParent(path, leafIdx, newLeafIdx, separator)
}

// insertIntoParent attaches a newly split right sibling into the parent
// recorded at the top of path, splitting that parent in turn if it now
// overflows, all the way up to a fresh root if necessary.
func (t *Tree) insertIntoParent(path []int, leftIdx, rightIdx int, separator uint64) {
	if len(path) == 0 {
		newRootIdx := t.newInternal()
		t.nodes[newRootIdx].keys = []uint64{separator}
		t.nodes[newRootIdx].children = []int{leftIdx, rightIdx}
		t.root = newRootIdx
		return
	}

	parentIdx := path[len(path)-1]
	parentPath := path[:len(path)-1]

	children := t.nodes[parentIdx].children
	pos := indexOf(children, leftIdx)

	t.nodes[parentIdx].keys = insertAt(t.nodes[parentIdx].keys, pos, separator)
	t.nodes[parentIdx].children = insertAt(t.nodes[parentIdx].children, pos+1, rightIdx)

	if len(t.nodes[parentIdx].keys) > t.maxInternalKeys() {
		t.splitInternal(parentIdx, parentPath)
	}
}

// splitInternal splits an overflowing internal node, promoting its median
// key to the parent and recursing if necessary.
func (t *Tree) splitInternal(nodeIdx int, path []int) {
	keys := t.nodes[nodeIdx].keys
	children := t.nodes[nodeIdx].children
	mid := len(keys) / 2
	separator := keys[mid]

	newIdx := t.newInternal()

	leftKeys := append([]uint64(nil), keys[:mid]...)
	leftChildren := append([]int(nil), children[:mid+1]...)
	rightKeys := append([]uint64(nil), keys[mid+1:]...)
	rightChildren := append([]int(nil), children[mid+1:]...)

	t.nodes[nodeIdx].keys = leftKeys
	t.nodes[nodeIdx].children = leftChildren
	t.nodes[newIdx].keys = rightKeys
	t.nodes[newIdx].children = rightChildren

	t.insertIntoParent(path, nodeIdx, newIdx, separator)
}

// RangeQuery returns every (key, value) pair with lo <= key <= hi, in
// ascending key order.
func (t *Tree) RangeQuery(lo, hi uint64) []Pair {
	var out []Pair
	if lo > hi {
		return out
	}

	leafIdx := t.findLeaf(lo)
	for leafIdx != -1 {
		leaf := t.nodes[leafIdx]
		start := sort.Search(len(leaf.keys), func(i int) bool { return leaf.keys[i] >= lo })
		for i := start; i < len(leaf.keys); i++ {
			if leaf.keys[i] > hi {
				return out
			}
			out = append(out, Pair{Key: leaf.keys[i], Value: leaf.values[i]})
		}
		leafIdx = leaf.next
	}
	return out
}

func insertAt[T any](s []T, i int, v T) []T {
	s = append(s, v)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

func indexOf(s []int, v int) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
