package checkout

// State is the checkout lifecycle: Idle → Validating → Submitting → {Approved | Flagged | Failed}.
type State string

const (
	StateIdle       State = "IDLE"
	StateValidating State = "VALIDATING"
	StateSubmitting State = "SUBMITTING"
	StateApproved   State = "APPROVED"
	StateFlagged    State = "FLAGGED"
	StateFailed     State = "FAILED"
)

func (s State) InFlight() bool {
	return s == StateValidating || s == StateSubmitting
}

func (s State) Terminal() bool {
	return s == StateApproved || s == StateFlagged || s == StateFailed
}
