package timeclock

// SessionState is the login state of a Client.
type SessionState int

const (
	// Unauthenticated is the initial state and the state after a failed login.
	Unauthenticated SessionState = iota
	// Authenticated is entered when the login redirect lands on the home page.
	Authenticated
)

func (s SessionState) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}
