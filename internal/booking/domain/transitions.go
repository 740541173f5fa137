package domain

import (
	"fmt"
	"time"
)

// SetReceiverAvailability marks whether the Receiver can attend slotID.
// Withdrawing receiver availability also withdraws the Facilitator's.
func SetReceiverAvailability(p Pool, actor Role, slotID string, available bool) (Pool, error) {
	const action = ActionSetReceiverAvailability
	if !Permits(action, actor) {
		return p, reject(action, ReasonForbidden, actor, slotID, "")
	}
	i, ok := p.index[slotID]
	if !ok {
		return p, reject(action, ReasonUnknownSlot, actor, slotID, "")
	}

	next := p.clone()
	next.slots[i].ReceiverAvailable = available
	if !available {
		next.slots[i].FacilitatorAvailable = false
	}
	return next, nil
}

// SetFacilitatorAvailability marks whether the Facilitator can attend
// slotID. Only receiver-available slots may be marked.
func SetFacilitatorAvailability(p Pool, actor Role, slotID string, available bool) (Pool, error) {
	const action = ActionSetFacilitatorAvailability
	if !Permits(action, actor) {
		return p, reject(action, ReasonForbidden, actor, slotID, "")
	}
	i, ok := p.index[slotID]
	if !ok {
		return p, reject(action, ReasonUnknownSlot, actor, slotID, "")
	}
	if !p.slots[i].ReceiverAvailable {
		return p, reject(action, ReasonPreconditionFailed, actor, slotID, "receiver is not available")
	}

	next := p.clone()
	next.slots[i].FacilitatorAvailable = available
	return next, nil
}

// SubmitReceiverAvailability replaces the Receiver's availability with
// exactly slotIDs and marks the Receiver stage as submitted.
func SubmitReceiverAvailability(p Pool, actor Role, slotIDs []string) (Pool, error) {
	const action = ActionSubmitReceiverAvailability
	if !Permits(action, actor) {
		return p, reject(action, ReasonForbidden, actor, "", "")
	}
	chosen, err := lookupAll(p, action, actor, slotIDs)
	if err != nil {
		return p, err
	}

	next := p.clone()
	for i := range next.slots {
		available := chosen[i]
		next.slots[i].ReceiverAvailable = available
		if !available {
			next.slots[i].FacilitatorAvailable = false
		}
	}
	next.submitted[RoleReceiver] = true
	return next, nil
}

// SubmitFacilitatorAvailability replaces the Facilitator's availability
// with exactly slotIDs, which must all be receiver-available, and marks the
// Facilitator stage as submitted.
func SubmitFacilitatorAvailability(p Pool, actor Role, slotIDs []string) (Pool, error) {
	const action = ActionSubmitFacilitatorAvailability
	if !Permits(action, actor) {
		return p, reject(action, ReasonForbidden, actor, "", "")
	}
	chosen, err := lookupAll(p, action, actor, slotIDs)
	if err != nil {
		return p, err
	}
	for i := range chosen {
		if !p.slots[i].ReceiverAvailable {
			return p, reject(action, ReasonPreconditionFailed, actor, p.slots[i].ID, "receiver is not available")
		}
	}

	next := p.clone()
	for i := range next.slots {
		if next.slots[i].ReceiverAvailable {
			next.slots[i].FacilitatorAvailable = chosen[i]
		}
	}
	next.submitted[RoleFacilitator] = true
	return next, nil
}

// SelectOpportunity makes slotID the single active opportunity and resets
// its confirmations. A previous selection is cleared.
func SelectOpportunity(p Pool, actor Role, slotID string) (Pool, error) {
	const action = ActionSelectOpportunity
	if !Permits(action, actor) {
		return p, reject(action, ReasonForbidden, actor, slotID, "")
	}
	i, ok := p.index[slotID]
	if !ok {
		return p, reject(action, ReasonUnknownSlot, actor, slotID, "")
	}
	if !p.slots[i].IsMutual() {
		return p, reject(action, ReasonPreconditionFailed, actor, slotID, "slot is not mutually available")
	}

	next := p.clone()
	for j := range next.slots {
		next.slots[j].Selected = false
	}
	target := &next.slots[i]
	target.Selected = true
	target.ReceiverConfirmation = ConfirmationPending
	target.FacilitatorConfirmation = ConfirmationPending
	target.ReceiverRespondedAt = nil
	target.FacilitatorRespondedAt = nil
	return next, nil
}

// RespondConfirmation records the actor's answer on the selected slot.
// Each party answers at most once per selection.
func RespondConfirmation(p Pool, actor Role, confirmed bool, at time.Time) (Pool, error) {
	const action = ActionRespondConfirmation
	if !Permits(action, actor) {
		return p, reject(action, ReasonForbidden, actor, "", "")
	}
	i, ok := selectedIndex(p)
	if !ok {
		return p, reject(action, ReasonPreconditionFailed, actor, "", "no opportunity selected")
	}
	slot := p.slots[i]
	if current, _ := slot.ConfirmationOf(actor); !current.IsPending() {
		return p, reject(action, ReasonAlreadyResponded, actor, slot.ID, fmt.Sprintf("already %s", current))
	}

	next := p.clone()
	stamp := at.UTC()
	answer := ConfirmationFor(confirmed)
	switch actor {
	case RoleReceiver:
		next.slots[i].ReceiverConfirmation = answer
		next.slots[i].ReceiverRespondedAt = &stamp
	case RoleFacilitator:
		next.slots[i].FacilitatorConfirmation = answer
		next.slots[i].FacilitatorRespondedAt = &stamp
	}
	return next, nil
}

func lookupAll(p Pool, action Action, actor Role, slotIDs []string) (map[int]bool, error) {
	chosen := make(map[int]bool, len(slotIDs))
	for _, id := range slotIDs {
		i, ok := p.index[id]
		if !ok {
			return nil, reject(action, ReasonUnknownSlot, actor, id, "")
		}
		chosen[i] = true
	}
	return chosen, nil
}

func selectedIndex(p Pool) (int, bool) {
	for i, s := range p.slots {
		if s.Selected {
			return i, true
		}
	}
	return 0, false
}
