package bonds

// PairKey identifies an unordered particle pair. Always build it with Pair so
// that I < J.
type PairKey struct {
	I, J int
}

// Pair canonicalizes (a, b) into a key with the smaller index first.
func Pair(a, b int) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{I: a, J: b}
}
