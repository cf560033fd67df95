package parser

// NodeKind classifies a trie node.
type NodeKind uint8

const (
	// Staging marks a node that is only a prefix of registered tokens.
	Staging NodeKind = iota
	// AccountToken marks the last character of an account token.
	AccountToken
	// HintToken marks the last character of a hint token.
	HintToken
)

func (k NodeKind) String() string {
	switch k {
	case AccountToken:
		return "account"
	case HintToken:
		return "hint"
	default:
		return "staging"
	}
}

// NodeID indexes a node in a Trie's arena. The root is always 0.
type NodeID int32

// Root is the identifier of the trie root.
const Root NodeID = 0

type node struct {
	ch       rune
	kind     NodeKind
	children []NodeID
}

// Trie is a character trie over account and hint tokens. Nodes live in a flat
// arena and refer to each other by index, so scan state can hold a cursor into
// the trie without aliasing it.
type Trie struct {
	nodes []node
}

// NewTrie creates an empty trie containing only the root.
func NewTrie() *Trie {
	return &Trie{nodes: []node{{}}}
}

// Feed inserts token and marks its final node with kind. Feeding a token that
// already exists overwrites its kind. Empty tokens are ignored.
func (t *Trie) Feed(token string, kind NodeKind) {
	if token == "" {
		return
	}

	cur := Root
	for _, ch := range token {
		next, ok := t.Find(cur, ch)
		if !ok {
			next = NodeID(len(t.nodes))
			t.nodes = append(t.nodes, node{ch: ch})
			t.nodes[cur].children = append(t.nodes[cur].children, next)
		}
		cur = next
	}
	t.nodes[cur].kind = kind
}

// Find returns the child of id reached by ch.
func (t *Trie) Find(id NodeID, ch rune) (NodeID, bool) {
	for _, child := range t.nodes[id].children {
		if t.nodes[child].ch == ch {
			return child, true
		}
	}
	return 0, false
}

// Kind returns the kind of the node.
func (t *Trie) Kind(id NodeID) NodeKind {
	return t.nodes[id].kind
}

// Lookup walks token from the root and returns the kind of its final node.
// The boolean is false when token is not a path in the trie.
func (t *Trie) Lookup(token string) (NodeKind, bool) {
	cur := Root
	for _, ch := range token {
		next, ok := t.Find(cur, ch)
		if !ok {
			return Staging, false
		}
		cur = next
	}
	return t.nodes[cur].kind, true
}

// Len returns the number of nodes including the root.
func (t *Trie) Len() int {
	return len(t.nodes)
}
