package domain

// Action names a state-machine operation.
type Action string

const (
	ActionSetReceiverAvailability       Action = "set_receiver_availability"
	ActionSetFacilitatorAvailability    Action = "set_facilitator_availability"
	ActionSubmitReceiverAvailability    Action = "submit_receiver_availability"
	ActionSubmitFacilitatorAvailability Action = "submit_facilitator_availability"
	ActionSelectOpportunity             Action = "select_opportunity"
	ActionRespondConfirmation           Action = "respond_confirmation"
)

// Actions lists every action in protocol order.
func Actions() []Action {
	return []Action{
		ActionSetReceiverAvailability,
		ActionSubmitReceiverAvailability,
		ActionSetFacilitatorAvailability,
		ActionSubmitFacilitatorAvailability,
		ActionSelectOpportunity,
		ActionRespondConfirmation,
	}
}

// IsValid reports whether a is a known action.
func (a Action) IsValid() bool {
	_, ok := allowList[a]
	return ok
}

var allowList = map[Action][]Role{
	ActionSetReceiverAvailability:       {RoleReceiver, RoleProvider},
	ActionSubmitReceiverAvailability:    {RoleReceiver, RoleProvider},
	ActionSetFacilitatorAvailability:    {RoleFacilitator, RoleProvider},
	ActionSubmitFacilitatorAvailability: {RoleFacilitator, RoleProvider},
	ActionSelectOpportunity:             {RoleProvider},
	ActionRespondConfirmation:           {RoleReceiver, RoleFacilitator},
}

// Permits reports whether role may perform action.
func Permits(action Action, role Role) bool {
	for _, allowed := range allowList[action] {
		if allowed == role {
			return true
		}
	}
	return false
}

// AllowedRoles returns the roles permitted to perform action.
func AllowedRoles(action Action) []Role {
	roles := allowList[action]
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}
