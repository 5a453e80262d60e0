package validation

import "strings"

// Violations maps a field name to a short machine-readable reason. An empty map means
// the request shape is acceptable.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Required flags blank string fields.
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

// RequiredInt flags absent integer fields (decoded into a nil pointer).
func RequiredInt(field string, value *int, v Violations) {
	if value == nil {
		v[field] = "required"
	}
}
