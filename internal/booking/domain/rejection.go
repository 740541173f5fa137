package domain

import (
	"errors"
	"fmt"
)

// Reason is the machine-checkable cause of a rejected action.
type Reason string

const (
	ReasonUnknownSlot        Reason = "unknown_slot"
	ReasonForbidden          Reason = "forbidden"
	ReasonPreconditionFailed Reason = "precondition_failed"
	ReasonAlreadyResponded   Reason = "already_responded"
)

var (
	ErrUnknownSlot        = errors.New("unknown slot")
	ErrForbidden          = errors.New("role not permitted to perform action")
	ErrPreconditionFailed = errors.New("action precondition not met")
	ErrAlreadyResponded   = errors.New("party has already responded")
)

var reasonSentinels = map[Reason]error{
	ReasonUnknownSlot:        ErrUnknownSlot,
	ReasonForbidden:          ErrForbidden,
	ReasonPreconditionFailed: ErrPreconditionFailed,
	ReasonAlreadyResponded:   ErrAlreadyResponded,
}

// RejectionError reports why the state machine refused an action. The pool
// it was given is left untouched.
type RejectionError struct {
	Action Action
	Reason Reason
	Role   Role
	SlotID string
	Detail string
}

func (e *RejectionError) Error() string {
	msg := fmt.Sprintf("%s rejected for %s: %s", e.Action, e.Role, e.Reason)
	if e.SlotID != "" {
		msg += " (slot " + e.SlotID + ")"
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap exposes the sentinel matching the reason.
func (e *RejectionError) Unwrap() error {
	return reasonSentinels[e.Reason]
}

// ReasonOf extracts the rejection reason from err, if any.
func ReasonOf(err error) (Reason, bool) {
	var rejection *RejectionError
	if errors.As(err, &rejection) {
		return rejection.Reason, true
	}
	return "", false
}

func reject(action Action, reason Reason, role Role, slotID, detail string) error {
	return &RejectionError{Action: action, Reason: reason, Role: role, SlotID: slotID, Detail: detail}
}
