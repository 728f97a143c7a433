// Package sliceops converts between the little-endian byte order HCI uses on
// the wire and the most significant byte first order used for display.
package sliceops

// Reverse returns a reversed copy of in.
func Reverse(in []byte) []byte {
	out := make([]byte, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}
