package tools

// Args is a validated argument bag: defaults filled in, scalars coerced to
// their declared types. Lifetime is one invocation.
type Args map[string]any

// String returns the named argument as a string, or "" when absent.
func (a Args) String(key string) string {
	s, _ := a[key].(string)
	return s
}

// Int returns the named argument as an int, or 0 when absent. JSON numbers
// decode as float64, so both representations are handled.
func (a Args) Int(key string) int {
	switch v := a[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Bool returns the named argument as a bool, or false when absent.
func (a Args) Bool(key string) bool {
	b, _ := a[key].(bool)
	return b
}

// ResolveUser returns the target user identity: the "user" argument when
// supplied, otherwise the configured default. Operations acting on a
// mailbox, drive, or calendar need one of the two.
func ResolveUser(a Args, fallback string) (string, error) {
	if u := a.String("user"); u != "" {
		return u, nil
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", &ValidationError{Field: "user", Reason: "no user supplied and no default user configured"}
}
