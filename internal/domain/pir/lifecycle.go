// Package pir models the Product Information Request lifecycle: which status
// transitions exist, which party may perform them, and which notification
// event each one fires. Pure domain logic, no external dependencies.
package pir

import "errors"

// Status of a PIR request.
type Status string

const (
	StatusDraft       Status = "draft"
	StatusSent        Status = "sent"
	StatusInProgress  Status = "in_progress"
	StatusSubmitted   Status = "submitted"
	StatusResubmitted Status = "resubmitted"
	StatusInReview    Status = "in_review"
	StatusFlagged     Status = "flagged"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusCanceled    Status = "canceled"
)

var (
	ErrUnknownStatus     = errors.New("unknown PIR status")
	ErrTerminalStatus    = errors.New("PIR is in a terminal status")
	ErrInvalidTransition = errors.New("transition not allowed from current status")
)

// Party identifies which side of a request performs an action.
type Party string

const (
	PartyCustomer Party = "customer"
	PartySupplier Party = "supplier"
)

// Event is a notification trigger attached to a transition. EventNone means
// the transition is silent.
type Event string

const (
	EventNone                Event = ""
	EventPIRCreated          Event = "PIR_STATUS_UPDATE"       // initial request, emailed to supplier
	EventResponseSubmitted   Event = "PIR_RESPONSE_SUBMITTED"  // submission, emailed to customer
	EventRevisionRequested   Event = "PIR_REVISION_REQUESTED"  // flags raised, emailed to supplier
	EventResponseResubmitted Event = "PIR_RESPONSE_RESUBMITTED" // resubmission, emailed to customer
	EventReviewCompleted     Event = "REVIEW_COMPLETED"        // approved or rejected, emailed to supplier
)

// edge describes one allowed transition.
type edge struct {
	Actor Party
	Event Event
}

// transitions is the full lifecycle table. Cancellation is handled separately
// because it applies from every non-terminal status.
var transitions = map[Status]map[Status]edge{
	StatusDraft: {
		StatusSent: {PartyCustomer, EventPIRCreated},
	},
	StatusSent: {
		StatusInProgress: {PartySupplier, EventNone}, // implicit, first answer saved
		StatusSubmitted:  {PartySupplier, EventResponseSubmitted},
	},
	StatusInProgress: {
		StatusSubmitted: {PartySupplier, EventResponseSubmitted},
	},
	StatusSubmitted: {
		StatusInReview: {PartyCustomer, EventNone},
	},
	StatusResubmitted: {
		StatusInReview: {PartyCustomer, EventNone},
		StatusApproved: {PartyCustomer, EventReviewCompleted},
	},
	StatusInReview: {
		StatusFlagged:  {PartyCustomer, EventRevisionRequested},
		StatusApproved: {PartyCustomer, EventReviewCompleted},
		StatusRejected: {PartyCustomer, EventReviewCompleted},
	},
	StatusFlagged: {
		StatusResubmitted: {PartySupplier, EventResponseResubmitted},
	},
}

// Initial is the status every new request starts in.
func Initial() Status { return StatusDraft }

// IsTerminal reports whether no further transition exists from s.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCanceled
}

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusInProgress, StatusSubmitted, StatusResubmitted,
		StatusInReview, StatusFlagged, StatusApproved, StatusRejected, StatusCanceled:
		return true
	}
	return false
}

// Parse normalizes a raw status string, accepting the legacy aliases that
// older data used for the same concepts (accepted/reviewed for approved,
// pending_supplier for sent).
func Parse(raw string) (Status, error) {
	switch raw {
	case "accepted", "reviewed":
		return StatusApproved, nil
	case "pending_supplier":
		return StatusSent, nil
	}
	s := Status(raw)
	if !s.Valid() {
		return "", ErrUnknownStatus
	}
	return s, nil
}

// Transition validates the move from -> to and returns who performs it and
// which event it fires. Terminal statuses reject every transition as a
// checked precondition.
func Transition(from, to Status) (Party, Event, error) {
	if !from.Valid() || !to.Valid() {
		return "", EventNone, ErrUnknownStatus
	}
	if from.IsTerminal() {
		return "", EventNone, ErrTerminalStatus
	}
	if to == StatusCanceled {
		// Customer may cancel from any non-terminal status; no notification.
		return PartyCustomer, EventNone, nil
	}
	e, ok := transitions[from][to]
	if !ok {
		return "", EventNone, ErrInvalidTransition
	}
	return e.Actor, e.Event, nil
}

// CanTransition reports whether from -> to is an allowed move.
func CanTransition(from, to Status) bool {
	_, _, err := Transition(from, to)
	return err == nil
}

// NextActor returns the party expected to act next for a given status, used
// by the UI to bucket requests. Terminal statuses have no next actor.
func NextActor(s Status) (Party, bool) {
	switch s {
	case StatusDraft, StatusSubmitted, StatusResubmitted, StatusInReview:
		return PartyCustomer, true
	case StatusSent, StatusInProgress, StatusFlagged:
		return PartySupplier, true
	default:
		return "", false
	}
}

// DisplayBucket maps a status to the coarse bucket customers see. The
// sent/in_progress distinction is display-only; both read as pending the
// supplier.
func DisplayBucket(s Status) string {
	switch s {
	case StatusSent, StatusInProgress:
		return "pending_supplier"
	default:
		return string(s)
	}
}
