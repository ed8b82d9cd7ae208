package common

// WipeByteArray overwrites a sensitive byte slice (e.g. a password) so it
// does not linger in memory after use.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
