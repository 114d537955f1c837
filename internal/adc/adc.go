// Package adc abstracts the analog-to-digital converter that digitizes
// the shared output line of each multiplexer bank.
package adc

// Reader reads one analog input of the converter and returns the raw
// count in the converter's native 12-bit resolution (0-4095).
type Reader interface {
	ReadRaw(channel int) (int, error)
}
