// Package registry resolves player identifiers by unambiguous prefix.
//
// The trie is stored as an arena of nodes addressed by index. Each node keeps
// the number of values stored in its subtree, so a prefix lookup never has to
// walk the whole subtree to decide whether it is ambiguous.
package registry

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var (
	// ErrDuplicateID is returned when inserting an id that is already stored.
	ErrDuplicateID = errors.New("duplicate id")
	// ErrUnknownID is returned when no stored id starts with the prefix.
	ErrUnknownID = errors.New("unknown id")
	// ErrAmbiguousID is returned when several stored ids start with the prefix.
	ErrAmbiguousID = errors.New("ambiguous id")
	// ErrEmptyID is returned when inserting the empty string.
	ErrEmptyID = errors.New("empty id")
)

const root = 0

type node[V any] struct {
	parent   int
	key      rune
	children map[rune]int
	value    V
	hasValue bool
	count    int // values stored in this subtree, including this node
}

// Trie maps string ids to values and supports lookup by unique prefix.
// The zero value is not usable; use New.
type Trie[V any] struct {
	nodes []node[V]
	free  []int
	live  int
}

// New returns an empty trie.
func New[V any]() *Trie[V] {
	t := &Trie[V]{}
	t.nodes = append(t.nodes, node[V]{parent: -1})
	t.live = 1
	return t
}

// Len returns the number of stored ids.
func (t *Trie[V]) Len() int {
	return t.nodes[root].count
}

// NodeCount returns the number of live nodes, including the root.
func (t *Trie[V]) NodeCount() int {
	return t.live
}

// Insert stores v under id.
func (t *Trie[V]) Insert(id string, v V) error {
	if id == "" {
		return ErrEmptyID
	}
	if idx, ok := t.walk(id); ok && t.nodes[idx].hasValue {
		return fmt.Errorf("insert %q: %w", id, ErrDuplicateID)
	}

	cur := root
	for _, r := range id {
		next, ok := t.nodes[cur].children[r]
		if !ok {
			next = t.alloc(cur, r)
			if t.nodes[cur].children == nil {
				t.nodes[cur].children = make(map[rune]int)
			}
			t.nodes[cur].children[r] = next
		}
		cur = next
	}
	t.nodes[cur].value = v
	t.nodes[cur].hasValue = true

	for i := cur; i != -1; i = t.nodes[i].parent {
		t.nodes[i].count++
	}
	return nil
}

// Find returns the value identified by prefix. A prefix that is itself a
// stored id always resolves to that id.
func (t *Trie[V]) Find(prefix string) (V, error) {
	idx, err := t.resolve(prefix)
	if err != nil {
		var zero V
		return zero, err
	}
	return t.nodes[idx].value, nil
}

// FindID is Find returning the full id of the resolved entry.
func (t *Trie[V]) FindID(prefix string) (string, error) {
	idx, err := t.resolve(prefix)
	if err != nil {
		return "", err
	}
	return t.idOf(idx), nil
}

// Delete removes the value identified by prefix and prunes the nodes that no
// longer lead to any value.
func (t *Trie[V]) Delete(prefix string) (V, error) {
	idx, err := t.resolve(prefix)
	if err != nil {
		var zero V
		return zero, err
	}

	n := &t.nodes[idx]
	v := n.value
	var zero V
	n.value = zero
	n.hasValue = false

	for i := idx; i != -1; {
		parent := t.nodes[i].parent
		t.nodes[i].count--
		if i != root && t.nodes[i].count == 0 {
			delete(t.nodes[parent].children, t.nodes[i].key)
			t.release(i)
		}
		i = parent
	}
	return v, nil
}

// Keys returns all stored ids in lexical order.
func (t *Trie[V]) Keys() []string {
	keys := make([]string, 0, t.Len())
	var visit func(idx int, prefix []rune)
	visit = func(idx int, prefix []rune) {
		n := t.nodes[idx]
		if n.hasValue {
			keys = append(keys, string(prefix))
		}
		for _, r := range slices.Sorted(maps.Keys(n.children)) {
			visit(n.children[r], append(prefix, r))
		}
	}
	visit(root, nil)
	return keys
}

func (t *Trie[V]) resolve(prefix string) (int, error) {
	if prefix == "" {
		return 0, fmt.Errorf("%w: empty prefix", ErrUnknownID)
	}
	idx, ok := t.walk(prefix)
	if !ok || t.nodes[idx].count == 0 {
		return 0, fmt.Errorf("%q: %w", prefix, ErrUnknownID)
	}
	if t.nodes[idx].hasValue {
		return idx, nil
	}
	if t.nodes[idx].count > 1 {
		return 0, fmt.Errorf("%q: %w", prefix, ErrAmbiguousID)
	}

	// Exactly one value below: follow the only populated branch.
	for !t.nodes[idx].hasValue {
		for _, child := range t.nodes[idx].children {
			if t.nodes[child].count > 0 {
				idx = child
				break
			}
		}
	}
	return idx, nil
}

func (t *Trie[V]) walk(s string) (int, bool) {
	cur := root
	for _, r := range s {
		next, ok := t.nodes[cur].children[r]
		if !ok {
			return 0, false
		}
		cur = next
	}
	return cur, true
}

func (t *Trie[V]) idOf(idx int) string {
	var rs []rune
	for i := idx; i != root; i = t.nodes[i].parent {
		rs = append(rs, t.nodes[i].key)
	}
	for i, j := 0, len(rs)-1; i < j; i, j = i+1, j-1 {
		rs[i], rs[j] = rs[j], rs[i]
	}
	return string(rs)
}

func (t *Trie[V]) alloc(parent int, key rune) int {
	t.live++
	n := node[V]{parent: parent, key: key}
	if len(t.free) > 0 {
		idx := t.free[len(t.free)-1]
		t.free = t.free[:len(t.free)-1]
		t.nodes[idx] = n
		return idx
	}
	t.nodes = append(t.nodes, n)
	return len(t.nodes) - 1
}

func (t *Trie[V]) release(idx int) {
	t.live--
	t.nodes[idx] = node[V]{parent: -1}
	t.free = append(t.free, idx)
}

