// Package secret holds configuration values that must never be written to logs or spans.
package secret

type String string

const redacted = "REDACTED"

// String implements fmt.Stringer and redacts the sensitive value.
func (s String) String() string {
	return redacted
}

// GoString implements fmt.GoStringer and redacts the sensitive value.
func (s String) GoString() string {
	return redacted
}

// Raw returns the sensitive value as a string.
func (s String) Raw() string {
	return string(s)
}

// IsSet reports whether a value was configured at all. Database credentials for
// the admin user are commonly empty, so callers check this rather than comparing strings.
func (s String) IsSet() bool {
	return s != ""
}

func (s String) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}
