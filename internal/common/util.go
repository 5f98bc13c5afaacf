// Package common holds small helpers shared across the client.
package common

// WipeByteArray zeroes a sensitive buffer in place. Safe to call on nil.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
