// Package colourise decorates terminal output with ANSI colours.
package colourise

import (
	"fmt"
	"hash/crc32"
)

// palette holds the 256-colour codes that stay readable on a dark background.
var palette = func() []uint8 {
	var p []uint8
	for _, r := range [][2]uint8{{9, 14}, {21, 51}, {63, 87}, {92, 144}, {146, 231}} {
		for c := r[0]; c <= r[1]; c++ {
			p = append(p, c)
		}
	}
	return p
}()

// ApplyColour wraps value in the escape sequence for a colour derived from a
// hash of value, so the same trace id or span name always gets the same colour.
func ApplyColour(value string) string {
	i := crc32.ChecksumIEEE([]byte(value)) % uint32(len(palette)) //nolint:gosec
	return fmt.Sprintf("\033[1;38;5;%dm%s\033[0m", palette[i], value)
}

// ErrorHighlight renders s as white on red.
func ErrorHighlight(s string) string {
	return fmt.Sprintf("\033[1;37;41m%s\033[0m", s)
}
