package retry

// Policy bounds how many times a preparation job may be retried before the
// asset is parked in failed.
type Policy struct {
	Cap int
}

func NewPolicy(cap int) Policy {
	return Policy{Cap: cap}
}

// Eligible reports whether another attempt is allowed after attempts
// completed tries.
func (p Policy) Eligible(attempts int) bool {
	return attempts < p.Cap
}

// Exhausted is the inverse of Eligible, for readability at call sites.
func (p Policy) Exhausted(attempts int) bool {
	return !p.Eligible(attempts)
}
