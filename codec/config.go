package codec

// TruncatePolicy decides what a string setter does with input longer than
// the slot capacity.
type TruncatePolicy uint8

const (
	// TruncateSilently stores the longest prefix that fits. UTF-8 strings
	// are cut on a rune boundary.
	TruncateSilently TruncatePolicy = iota
	// TruncateReject fails with ErrStringTooLong and writes nothing.
	TruncateReject
)

func (p TruncatePolicy) String() string {
	switch p {
	case TruncateSilently:
		return "truncate"
	case TruncateReject:
		return "reject"
	default:
		return "unknown"
	}
}

func (p TruncatePolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ParsePolicy maps the names produced by String back to a policy.
func ParsePolicy(s string) (TruncatePolicy, bool) {
	switch s {
	case "truncate", "":
		return TruncateSilently, true
	case "reject":
		return TruncateReject, true
	}
	return TruncateSilently, false
}

// Config holds compiler options.
type Config struct {
	StringPolicy TruncatePolicy
}

