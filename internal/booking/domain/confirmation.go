package domain

// Confirmation is a party's answer to the urgent opportunity.
type Confirmation string

const (
	ConfirmationPending   Confirmation = "pending"
	ConfirmationConfirmed Confirmation = "confirmed"
	ConfirmationDeclined  Confirmation = "declined"
)

// ConfirmationFor maps a yes/no answer to its terminal state.
func ConfirmationFor(confirmed bool) Confirmation {
	if confirmed {
		return ConfirmationConfirmed
	}
	return ConfirmationDeclined
}

// IsValid reports whether c is one of the three states.
func (c Confirmation) IsValid() bool {
	switch c {
	case ConfirmationPending, ConfirmationConfirmed, ConfirmationDeclined:
		return true
	default:
		return false
	}
}

// IsPending reports whether no answer has been recorded yet.
func (c Confirmation) IsPending() bool {
	return c == ConfirmationPending
}
