package domain

// Zero overwrites a byte slice in place. Unwrapped org keys and derived
// master keys go through here as soon as their request scope ends.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
