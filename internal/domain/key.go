package domain

import "strings"

// KeyKind tags which identifier a product is addressed by.
type KeyKind string

const (
	KeyCode KeyKind = "code"
	KeyName KeyKind = "name"
)

// noCodeSentinel is the extract's placeholder for "no code provided".
const noCodeSentinel = "NO CODE"

// ProductKey is the single canonical product identity: a tagged (kind, value)
// pair with one equality, used consistently across every lookup index.
type ProductKey struct {
	Kind  KeyKind
	Value string
}

// UsableCode reports whether a raw code can serve as a product identity:
// non-empty after trimming and not the "no code" placeholder.
func UsableCode(code string) bool {
	c := strings.TrimSpace(code)
	return c != "" && strings.ToUpper(c) != noCodeSentinel
}

// ResolveKey decides a row's product identity from its raw code and name.
// A usable code wins; otherwise a non-empty trimmed name is used. The second
// return is false when neither yields an identity and the row must be dropped.
// This is applied identically at ingestion and at reconciliation time so the
// same row always maps to the same entity key.
func ResolveKey(code, name string) (ProductKey, bool) {
	if UsableCode(code) {
		return ProductKey{Kind: KeyCode, Value: strings.TrimSpace(code)}, true
	}
	if n := strings.TrimSpace(name); n != "" {
		return ProductKey{Kind: KeyName, Value: n}, true
	}
	return ProductKey{}, false
}
