// Package identity holds small helpers over the opaque ids concepts
// exchange. It owns no store and is not a concept itself.
package identity

// UnorderedPairKey returns the canonical uniqueness key for an unordered
// pair of ids. Both orderings of the same two ids produce the same key,
// which is what makes chat and collaborative-session creation idempotent
// per pair.
func UnorderedPairKey(a, b string) string {
	if a < b {
		return a + "#" + b
	}
	return b + "#" + a
}
