package domain

import (
	"errors"
	"fmt"
	"iter"
)

// ErrInvariantViolation is returned when a pool fails validation.
var ErrInvariantViolation = errors.New("slot pool invariant violated")

// Pool is the ordered, immutable set of slots for one session. Every
// accepted transition produces a new Pool; callers never observe a
// partially updated one.
type Pool struct {
	slots     []TimeSlot
	index     map[string]int
	submitted map[Role]bool
}

func newPool(slots []TimeSlot) Pool {
	index := make(map[string]int, len(slots))
	for i, s := range slots {
		index[s.ID] = i
	}
	return Pool{slots: slots, index: index, submitted: map[Role]bool{}}
}

// RehydratePool rebuilds a pool from stored slots and re-checks every
// invariant.
func RehydratePool(slots []TimeSlot, submitted []Role) (Pool, error) {
	copied := make([]TimeSlot, len(slots))
	for i, s := range slots {
		copied[i] = s.clone()
	}
	p := newPool(copied)
	if len(p.index) != len(copied) {
		return Pool{}, fmt.Errorf("%w: duplicate slot id", ErrInvariantViolation)
	}
	for _, role := range submitted {
		if !role.IsValid() {
			return Pool{}, fmt.Errorf("%w: unknown submitting role %q", ErrInvariantViolation, role)
		}
		p.submitted[role] = true
	}
	if err := p.Validate(); err != nil {
		return Pool{}, err
	}
	return p, nil
}

// Len returns the number of slots.
func (p Pool) Len() int { return len(p.slots) }

// Slots returns a copy of the slots in generation order.
func (p Pool) Slots() []TimeSlot {
	out := make([]TimeSlot, len(p.slots))
	for i, s := range p.slots {
		out[i] = s.clone()
	}
	return out
}

// All yields copies of the slots in generation order.
func (p Pool) All() iter.Seq[TimeSlot] {
	return func(yield func(TimeSlot) bool) {
		for _, s := range p.slots {
			if !yield(s.clone()) {
				return
			}
		}
	}
}

// Slot looks up a slot by id.
func (p Pool) Slot(id string) (TimeSlot, bool) {
	i, ok := p.index[id]
	if !ok {
		return TimeSlot{}, false
	}
	return p.slots[i].clone(), true
}

// HasSubmitted reports whether role has completed an availability round trip.
func (p Pool) HasSubmitted(role Role) bool {
	return p.submitted[role]
}

// SubmittedRoles lists the roles that have submitted, in role order.
func (p Pool) SubmittedRoles() []Role {
	var out []Role
	for _, r := range Roles() {
		if p.submitted[r] {
			out = append(out, r)
		}
	}
	return out
}

// Validate checks the pool-wide and per-slot invariants.
func (p Pool) Validate() error {
	selected := 0
	for _, s := range p.slots {
		if !s.Period.IsValid() {
			return fmt.Errorf("%w: slot %s has unknown period %q", ErrInvariantViolation, s.ID, s.Period)
		}
		if s.ID != SlotID(s.Date, s.Period) {
			return fmt.Errorf("%w: slot id %s does not match its date and period", ErrInvariantViolation, s.ID)
		}
		if s.Selected {
			selected++
		}
		if s.FacilitatorAvailable && !s.ReceiverAvailable {
			return fmt.Errorf("%w: slot %s facilitator-available without receiver", ErrInvariantViolation, s.ID)
		}
		if !s.ReceiverConfirmation.IsValid() || !s.FacilitatorConfirmation.IsValid() {
			return fmt.Errorf("%w: slot %s has an invalid confirmation", ErrInvariantViolation, s.ID)
		}
		if s.ReceiverConfirmation.IsPending() != (s.ReceiverRespondedAt == nil) {
			return fmt.Errorf("%w: slot %s receiver timestamp out of step", ErrInvariantViolation, s.ID)
		}
		if s.FacilitatorConfirmation.IsPending() != (s.FacilitatorRespondedAt == nil) {
			return fmt.Errorf("%w: slot %s facilitator timestamp out of step", ErrInvariantViolation, s.ID)
		}
	}
	if selected > 1 {
		return fmt.Errorf("%w: %d slots selected", ErrInvariantViolation, selected)
	}
	return nil
}

// clone returns a pool that shares nothing mutable with p. The index is
// shared because slot identities never change after generation.
func (p Pool) clone() Pool {
	slots := make([]TimeSlot, len(p.slots))
	for i, s := range p.slots {
		slots[i] = s.clone()
	}
	submitted := make(map[Role]bool, len(p.submitted))
	for r, v := range p.submitted {
		submitted[r] = v
	}
	return Pool{slots: slots, index: p.index, submitted: submitted}
}
