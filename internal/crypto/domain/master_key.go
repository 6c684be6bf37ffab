package domain

// MasterKey holds the 256-bit key derived from the server's long-term secret.
//
// The master key exists only to wrap and unwrap organization content keys in
// server-side mode. It is re-derived deterministically on every process start
// and is never persisted. The security of every server-side encrypted value
// rests on the secrecy and entropy of the source secret, which is an
// operational property: derivation itself always succeeds.
type MasterKey struct {
	Key []byte
}

// Close zeroes the key material.
func (m *MasterKey) Close() {
	Zero(m.Key)
	m.Key = nil
}
