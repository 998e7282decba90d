package types

// redactedPlaceholder replaces secret values anywhere they would be printed
// or serialized.
const redactedPlaceholder = "***REDACTED***"

var redactedJSON = []byte(`"***REDACTED***"`)

// SecretString holds a sensitive value (the upstream API key) without letting
// it reach logs or serialized output. Both String() and MarshalJSON() emit a
// redacted placeholder; only Unmask() yields the plaintext.
type SecretString string

// String satisfies fmt.Stringer with the redacted placeholder, so %v/%s
// formatting of a config struct cannot leak the value.
func (s SecretString) String() string {
	return redactedPlaceholder
}

// MarshalJSON emits the redacted placeholder, keeping secrets out of config
// dumps, API responses, and structured log entries.
func (s SecretString) MarshalJSON() ([]byte, error) {
	return redactedJSON, nil
}

// Unmask returns the raw plaintext. Call sites should be limited to the
// points that genuinely need the value, e.g. building an upstream query string.
func (s SecretString) Unmask() string {
	return string(s)
}
