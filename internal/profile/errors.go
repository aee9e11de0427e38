package profile

// Error is an internal invariant violation, e.g. a user id that could not
// be resolved after a successful authentication. It is fatal to the
// session: callers clear the store and force re-login.
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return "profile: " + e.Reason
}
