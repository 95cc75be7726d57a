package helper_util

import "time"

// ParseTime parses the RFC3339 timestamps the DAOs store on nodes. A value
// that fails to parse maps to the zero time rather than failing the whole
// node mapping.
func ParseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ParseOptionalTime parses a node property that may be absent.
func ParseOptionalTime(value interface{}) time.Time {
	s, ok := value.(string)
	if !ok {
		return time.Time{}
	}
	return ParseTime(s)
}
