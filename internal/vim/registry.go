package vim

import (
	"fmt"
	"sort"
	"sync"

	"github.com/samber/mo"

	"github.com/dshills/modalcore/internal/input/key"
	"github.com/dshills/modalcore/internal/input/mode"
)

// Status is the outcome of resolving a key sequence.
type Status uint8

const (
	// NoPossibleMatch: no registered action starts with the keys.
	NoPossibleMatch Status = iota
	// WaitingOnKeys: the keys are a strict prefix of at least one action.
	WaitingOnKeys
	// Matched: an action was resolved.
	Matched
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case NoPossibleMatch:
		return "NoPossibleMatch"
	case WaitingOnKeys:
		return "WaitingOnKeys"
	case Matched:
		return "Matched"
	default:
		return fmt.Sprintf("Status(%d)", s)
	}
}

// Resolution is the result of Registry.Resolve.
type Resolution struct {
	Status Status

	// Action is set when Status is Matched.
	Action Action

	// Consumed is how many of the keys the action used. Keys past
	// Consumed must be fed again once the action has run.
	Consumed int

	// HasExact is set on WaitingOnKeys when the keys already form a
	// complete action that a later key could still extend.
	HasExact bool

	// Pseudo is the pseudo-mode to show while waiting, if any.
	Pseudo mo.Option[mode.Mode]
}

// Registry holds action definitions in a prefix tree keyed by key pattern.
type Registry struct {
	mu   sync.RWMutex
	tree *PrefixTree
	defs map[string]*Definition
	seq  int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tree: NewPrefixTree(),
		defs: make(map[string]*Definition),
	}
}

// Register adds definitions. Names must be unique.
// Earlier registrations win ties between equally specific matches.
func (r *Registry) Register(defs ...*Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return err
		}
		if _, dup := r.defs[def.Name]; dup {
			return fmt.Errorf("action %s already registered", def.Name)
		}
		r.defs[def.Name] = def
		for _, pattern := range def.Keys {
			r.tree.Insert(pattern, def, r.seq)
			r.seq++
		}
	}
	return nil
}

// MustRegister is Register for static action tables.
func (r *Registry) MustRegister(defs ...*Definition) {
	if err := r.Register(defs...); err != nil {
		panic(err)
	}
}

// Get returns a definition by name.
func (r *Registry) Get(name string) *Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defs[name]
}

// Resolve matches keys against the registered actions for the real mode
// of s. Pseudo-modes never affect matching.
//
// When the keys match an action exactly and no applicable action extends
// them, that action is returned. When an applicable action extends them,
// the result is WaitingOnKeys. When the keys match nothing, the longest
// prefix that forms a complete action is returned with Consumed set, so the
// caller can run it and feed the remaining keys again.
func (r *Registry) Resolve(s *State, keys []string) Resolution {
	if len(keys) == 0 {
		return Resolution{Status: NoPossibleMatch}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	m := s.Mode()
	exact, extended, pseudo := r.tree.match(keys, func(e *prefixEntry) bool {
		return e.def.ActiveIn(m) && (e.def.When == nil || e.def.When(s, keys))
	})

	if extended {
		return Resolution{Status: WaitingOnKeys, HasExact: exact != nil, Pseudo: pseudo}
	}
	if exact != nil {
		return Resolution{Status: Matched, Action: exact.bind(keys), Consumed: len(keys)}
	}
	return r.longestPrefixLocked(s, keys, len(keys)-1)
}

// ResolveFinal resolves keys without waiting for more input: the longest
// prefix forming a complete action wins. It is used once the
// disambiguation timeout has fired.
func (r *Registry) ResolveFinal(s *State, keys []string) Resolution {
	if len(keys) == 0 {
		return Resolution{Status: NoPossibleMatch}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.longestPrefixLocked(s, keys, len(keys))
}

func (r *Registry) longestPrefixLocked(s *State, keys []string, maxLen int) Resolution {
	m := s.Mode()
	for n := maxLen; n > 0; n-- {
		prefix := keys[:n]
		exact, _, _ := r.tree.match(prefix, func(e *prefixEntry) bool {
			return e.def.ActiveIn(m) && (e.def.When == nil || e.def.When(s, prefix))
		})
		if exact != nil {
			return Resolution{Status: Matched, Action: exact.bind(prefix), Consumed: n}
		}
	}
	return Resolution{Status: NoPossibleMatch}
}

// PrefixTree provides prefix-based lookup over key patterns. Placeholder
// keys such as CharacterArg are stored as ordinary children and matched by
// key class.
type PrefixTree struct {
	root *prefixNode
}

type prefixNode struct {
	children map[string]*prefixNode
	entries  []*prefixEntry
}

type prefixEntry struct {
	def     *Definition
	pattern []string
	seq     int
}

func (e *prefixEntry) bind(keys []string) Action {
	cp := make([]string, len(keys))
	copy(cp, keys)
	return Action{Def: e.def, Keys: cp, pattern: e.pattern}
}

func newPrefixNode() *prefixNode {
	return &prefixNode{children: make(map[string]*prefixNode)}
}

// NewPrefixTree creates a new prefix tree.
func NewPrefixTree() *PrefixTree {
	return &PrefixTree{root: newPrefixNode()}
}

// Insert adds a pattern for def.
func (t *PrefixTree) Insert(pattern []string, def *Definition, seq int) {
	node := t.root
	for _, k := range pattern {
		child, ok := node.children[k]
		if !ok {
			child = newPrefixNode()
			node.children[k] = child
		}
		node = child
	}
	node.entries = append(node.entries, &prefixEntry{def: def, pattern: pattern, seq: seq})
}

// placeholderAccepts reports whether a pattern element matches k.
func placeholderAccepts(placeholder, k string) bool {
	switch placeholder {
	case CharacterArg:
		return key.IsCharacter(k)
	case RegisterArg:
		return IsValidRegisterName(k)
	case NumberArg:
		return key.IsDigit(k)
	}
	return false
}

type walk struct {
	node *prefixNode
	// wild counts placeholder steps; literal paths are more specific.
	wild int
}

// match returns the best applicable exact entry for keys, whether some
// applicable entry strictly extends keys, and the pseudo-mode of an
// extending entry whose remaining keys are all placeholders.
func (t *PrefixTree) match(keys []string, applies func(*prefixEntry) bool) (*prefixEntry, bool, mo.Option[mode.Mode]) {
	walks := []walk{{node: t.root}}
	for _, k := range keys {
		var next []walk
		for _, w := range walks {
			if child, ok := w.node.children[k]; ok {
				next = append(next, walk{node: child, wild: w.wild})
			}
			for _, ph := range []string{CharacterArg, RegisterArg, NumberArg} {
				if child, ok := w.node.children[ph]; ok && placeholderAccepts(ph, k) {
					next = append(next, walk{node: child, wild: w.wild + 1})
				}
			}
		}
		if len(next) == 0 {
			return nil, false, mo.None[mode.Mode]()
		}
		walks = next
	}

	var candidates []*prefixEntry
	wildOf := make(map[*prefixEntry]int)
	extended := false
	pseudo := mo.None[mode.Mode]()

	for _, w := range walks {
		for _, e := range w.node.entries {
			if applies(e) {
				candidates = append(candidates, e)
				wildOf[e] = w.wild
			}
		}
		for _, e := range longerEntries(w.node) {
			if !applies(e) {
				continue
			}
			extended = true
			if p, ok := e.def.WaitingPseudo.Get(); ok && pseudo.IsAbsent() && onlyPlaceholdersAfter(e.pattern, len(keys)) {
				pseudo = mo.Some(p)
			}
		}
	}

	if len(candidates) == 0 {
		return nil, extended, pseudo
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if wildOf[candidates[i]] != wildOf[candidates[j]] {
			return wildOf[candidates[i]] < wildOf[candidates[j]]
		}
		return candidates[i].seq < candidates[j].seq
	})
	return candidates[0], extended, pseudo
}

// longerEntries returns the entries strictly below node.
func longerEntries(node *prefixNode) []*prefixEntry {
	var out []*prefixEntry
	var visit func(n *prefixNode)
	visit = func(n *prefixNode) {
		for _, child := range n.children {
			out = append(out, child.entries...)
			visit(child)
		}
	}
	visit(node)
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func onlyPlaceholdersAfter(pattern []string, n int) bool {
	if n >= len(pattern) {
		return false
	}
	for _, k := range pattern[n:] {
		if k != CharacterArg && k != RegisterArg && k != NumberArg {
			return false
		}
	}
	return true
}
