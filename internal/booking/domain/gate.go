package domain

import "iter"

// Stage is the advisory position of a session in the booking protocol.
type Stage string

const (
	StageReceiverAvailability    Stage = "receiver_availability"
	StageFacilitatorAvailability Stage = "facilitator_availability"
	StageSelection               Stage = "selection"
	StageConfirmation            Stage = "confirmation"
	StageRecord                  Stage = "record"
)

// ReceiverStageComplete reports whether the Receiver has submitted
// availability at least once.
func ReceiverStageComplete(p Pool) bool {
	return p.HasSubmitted(RoleReceiver)
}

// FacilitatorStageComplete reports whether the Facilitator has submitted
// availability at least once.
func FacilitatorStageComplete(p Pool) bool {
	return p.HasSubmitted(RoleFacilitator)
}

// MutualSlots yields, in pool order, the slots both parties can attend.
// The sequence can be ranged over repeatedly.
func MutualSlots(p Pool) iter.Seq[TimeSlot] {
	return func(yield func(TimeSlot) bool) {
		for s := range p.All() {
			if s.IsMutual() && !yield(s) {
				return
			}
		}
	}
}

// ActiveOpportunity returns the selected slot, if any.
func ActiveOpportunity(p Pool) (TimeSlot, bool) {
	i, ok := selectedIndex(p)
	if !ok {
		return TimeSlot{}, false
	}
	return p.slots[i].clone(), true
}

// IsFullyConfirmed reports whether both parties confirmed the slot.
func IsFullyConfirmed(s TimeSlot) bool {
	return s.ReceiverConfirmation == ConfirmationConfirmed &&
		s.FacilitatorConfirmation == ConfirmationConfirmed
}

// IsDeclined reports whether either party declined the slot.
func IsDeclined(s TimeSlot) bool {
	return s.ReceiverConfirmation == ConfirmationDeclined ||
		s.FacilitatorConfirmation == ConfirmationDeclined
}

// CurrentStage derives the protocol stage from the pool alone.
func CurrentStage(p Pool) Stage {
	active, selected := ActiveOpportunity(p)
	switch {
	case selected && !active.ReceiverConfirmation.IsPending() && !active.FacilitatorConfirmation.IsPending():
		return StageRecord
	case selected:
		return StageConfirmation
	case !ReceiverStageComplete(p):
		return StageReceiverAvailability
	case !FacilitatorStageComplete(p):
		return StageFacilitatorAvailability
	default:
		return StageSelection
	}
}

// NextAction suggests the action role should take next. It returns false
// when role has nothing to do at the current stage.
func NextAction(p Pool, role Role) (Action, bool) {
	var action Action
	switch CurrentStage(p) {
	case StageReceiverAvailability:
		action = ActionSubmitReceiverAvailability
	case StageFacilitatorAvailability:
		action = ActionSubmitFacilitatorAvailability
	case StageSelection:
		if !hasMutual(p) {
			return "", false
		}
		action = ActionSelectOpportunity
	case StageConfirmation:
		active, _ := ActiveOpportunity(p)
		if c, _ := active.ConfirmationOf(role); !c.IsPending() {
			return "", false
		}
		action = ActionRespondConfirmation
	default:
		return "", false
	}

	if !Permits(action, role) {
		return "", false
	}
	return action, true
}

func hasMutual(p Pool) bool {
	for range MutualSlots(p) {
		return true
	}
	return false
}
