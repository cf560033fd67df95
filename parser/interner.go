package parser

// Interner hands out one canonical string per token.
//
// Account and hint tokens repeat on nearly every input line. The parser
// finalizes tokens from a byte buffer, and interning them keeps the
// Accounts and Hints slices of every expression pointing at the strings
// registered in the trie.
type Interner struct {
	pool map[string]string
}

// NewInterner creates an interner sized for capacity tokens.
func NewInterner(capacity int) *Interner {
	return &Interner{pool: make(map[string]string, capacity)}
}

// Intern returns the pooled copy of s, adding s when it is new.
func (i *Interner) Intern(s string) string {
	if pooled, ok := i.pool[s]; ok {
		return pooled
	}
	i.pool[s] = s
	return s
}

// InternBytes is Intern for a token still held in a byte buffer. Known
// tokens are found without allocating.
func (i *Interner) InternBytes(b []byte) string {
	if pooled, ok := i.pool[string(b)]; ok {
		return pooled
	}
	return i.Intern(string(b))
}

// Size returns the number of pooled tokens.
func (i *Interner) Size() int {
	return len(i.pool)
}

// Reset empties the pool.
func (i *Interner) Reset() {
	clear(i.pool)
}
