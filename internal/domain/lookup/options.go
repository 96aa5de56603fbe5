package lookup

// Mode selects how names are matched.
type Mode string

// Lookup modes.
const (
	// ModeScan reads the whole collection and compares case-folded names.
	ModeScan Mode = "scan"
	// ModeIndexed asks the store for exact, case-sensitive equality.
	ModeIndexed Mode = "indexed"
)

// Policy decides which record wins when several share a name.
type Policy string

// Duplicate policies.
const (
	PolicyLast  Policy = "last"
	PolicyFirst Policy = "first"
)

type settings struct {
	mode   Mode
	policy Policy
}

func defaultSettings() settings {
	return settings{mode: ModeScan, policy: PolicyLast}
}

// Option configures a Finder.
type Option func(*settings)

// WithMode sets the match mode. Unknown modes are ignored.
func WithMode(m Mode) Option {
	return func(s *settings) {
		if m == ModeScan || m == ModeIndexed {
			s.mode = m
		}
	}
}

// WithPolicy sets the duplicate-name policy. Unknown policies are ignored.
func WithPolicy(p Policy) Option {
	return func(s *settings) {
		if p == PolicyLast || p == PolicyFirst {
			s.policy = p
		}
	}
}
