package enum

// CheckoutState is the lifecycle of one checkout attempt.
type CheckoutState string

const (
	CheckoutDraft      CheckoutState = "draft"
	CheckoutValidating CheckoutState = "validating"
	CheckoutCommitted  CheckoutState = "committed"
	CheckoutRejected   CheckoutState = "rejected"
)

func (s CheckoutState) String() string {
	return string(s)
}

// IsFinal reports whether no further transition is allowed.
func (s CheckoutState) IsFinal() bool {
	return s == CheckoutCommitted || s == CheckoutRejected
}

// CanTransitionTo allows Draft -> Validating -> Committed, and Rejected from
// any state that is not final.
func (s CheckoutState) CanTransitionTo(next CheckoutState) bool {
	if s.IsFinal() {
		return false
	}
	switch s {
	case CheckoutDraft:
		return next == CheckoutValidating || next == CheckoutRejected
	case CheckoutValidating:
		return next == CheckoutCommitted || next == CheckoutRejected
	}
	return false
}
