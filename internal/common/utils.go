package common

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// Used to drop secrets read from a terminal once they have been copied into
// a signer.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
