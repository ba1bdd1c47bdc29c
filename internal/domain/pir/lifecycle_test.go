package pir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scottring/compliant-connect-sub001/internal/domain/pir"
)

// ──────────────────────────────────────────────────────────────────────────────
// Transition table
// ──────────────────────────────────────────────────────────────────────────────

func TestInitial_IsDraft(t *testing.T) {
	assert.Equal(t, pir.StatusDraft, pir.Initial())
	assert.False(t, pir.Initial().IsTerminal(), "a new request must never start terminal")
}

func TestTransition_DraftToSent_NotifiesSupplier(t *testing.T) {
	actor, event, err := pir.Transition(pir.StatusDraft, pir.StatusSent)
	require.NoError(t, err)
	assert.Equal(t, pir.PartyCustomer, actor)
	assert.Equal(t, pir.EventPIRCreated, event)
}

func TestTransition_SubmitPaths(t *testing.T) {
	for _, from := range []pir.Status{pir.StatusSent, pir.StatusInProgress} {
		actor, event, err := pir.Transition(from, pir.StatusSubmitted)
		require.NoError(t, err, "submit from %s", from)
		assert.Equal(t, pir.PartySupplier, actor)
		assert.Equal(t, pir.EventResponseSubmitted, event)
	}
}

func TestTransition_ReviewCycle(t *testing.T) {
	// submitted -> in_review is silent
	_, event, err := pir.Transition(pir.StatusSubmitted, pir.StatusInReview)
	require.NoError(t, err)
	assert.Equal(t, pir.EventNone, event, "starting a review must not notify")

	// in_review -> flagged notifies supplier
	actor, event, err := pir.Transition(pir.StatusInReview, pir.StatusFlagged)
	require.NoError(t, err)
	assert.Equal(t, pir.PartyCustomer, actor)
	assert.Equal(t, pir.EventRevisionRequested, event)

	// flagged -> resubmitted notifies customer
	actor, event, err = pir.Transition(pir.StatusFlagged, pir.StatusResubmitted)
	require.NoError(t, err)
	assert.Equal(t, pir.PartySupplier, actor)
	assert.Equal(t, pir.EventResponseResubmitted, event)

	// resubmitted -> approved closes the loop
	_, event, err = pir.Transition(pir.StatusResubmitted, pir.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, pir.EventReviewCompleted, event)
}

func TestTransition_RejectFromReview(t *testing.T) {
	actor, event, err := pir.Transition(pir.StatusInReview, pir.StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, pir.PartyCustomer, actor)
	assert.Equal(t, pir.EventReviewCompleted, event)
}

func TestTransition_CancelFromAnyNonTerminal(t *testing.T) {
	nonTerminal := []pir.Status{
		pir.StatusDraft, pir.StatusSent, pir.StatusInProgress,
		pir.StatusSubmitted, pir.StatusResubmitted, pir.StatusInReview, pir.StatusFlagged,
	}
	for _, from := range nonTerminal {
		actor, event, err := pir.Transition(from, pir.StatusCanceled)
		require.NoError(t, err, "cancel from %s", from)
		assert.Equal(t, pir.PartyCustomer, actor)
		assert.Equal(t, pir.EventNone, event, "cancellation has no modeled notification")
	}
}

func TestTransition_SkippingStagesRejected(t *testing.T) {
	cases := []struct{ from, to pir.Status }{
		{pir.StatusDraft, pir.StatusSubmitted},
		{pir.StatusDraft, pir.StatusApproved},
		{pir.StatusSent, pir.StatusApproved},
		{pir.StatusSubmitted, pir.StatusApproved}, // review must be started first
		{pir.StatusFlagged, pir.StatusApproved},
	}
	for _, c := range cases {
		_, _, err := pir.Transition(c.from, c.to)
		assert.ErrorIs(t, err, pir.ErrInvalidTransition, "%s -> %s must be rejected", c.from, c.to)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Terminal statuses
// ──────────────────────────────────────────────────────────────────────────────

// Any transition out of approved, rejected or canceled is a usage error and
// must fail before reaching the store.
func TestTransition_TerminalStatusesAreFrozen(t *testing.T) {
	terminal := []pir.Status{pir.StatusApproved, pir.StatusRejected, pir.StatusCanceled}
	all := []pir.Status{
		pir.StatusDraft, pir.StatusSent, pir.StatusInProgress, pir.StatusSubmitted,
		pir.StatusResubmitted, pir.StatusInReview, pir.StatusFlagged,
		pir.StatusApproved, pir.StatusRejected, pir.StatusCanceled,
	}
	for _, from := range terminal {
		assert.True(t, from.IsTerminal())
		for _, to := range all {
			_, _, err := pir.Transition(from, to)
			assert.ErrorIs(t, err, pir.ErrTerminalStatus, "%s -> %s", from, to)
		}
		_, ok := pir.NextActor(from)
		assert.False(t, ok, "terminal status %s has no next actor", from)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Parsing and display
// ──────────────────────────────────────────────────────────────────────────────

// Legacy rows used accepted/reviewed for the approval terminal and
// pending_supplier for sent; Parse folds them onto the canonical names.
func TestParse_NormalizesLegacyAliases(t *testing.T) {
	for raw, want := range map[string]pir.Status{
		"accepted":         pir.StatusApproved,
		"reviewed":         pir.StatusApproved,
		"pending_supplier": pir.StatusSent,
		"draft":            pir.StatusDraft,
		"flagged":          pir.StatusFlagged,
	} {
		got, err := pir.Parse(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}
}

func TestParse_UnknownStatusRejected(t *testing.T) {
	_, err := pir.Parse("shipped")
	assert.ErrorIs(t, err, pir.ErrUnknownStatus)
}

func TestDisplayBucket_SentAndInProgressCollapse(t *testing.T) {
	assert.Equal(t, "pending_supplier", pir.DisplayBucket(pir.StatusSent))
	assert.Equal(t, "pending_supplier", pir.DisplayBucket(pir.StatusInProgress))
	assert.Equal(t, "approved", pir.DisplayBucket(pir.StatusApproved))
}

func TestNextActor_Buckets(t *testing.T) {
	supplierSide := []pir.Status{pir.StatusSent, pir.StatusInProgress, pir.StatusFlagged}
	customerSide := []pir.Status{pir.StatusDraft, pir.StatusSubmitted, pir.StatusResubmitted, pir.StatusInReview}
	for _, s := range supplierSide {
		actor, ok := pir.NextActor(s)
		require.True(t, ok)
		assert.Equal(t, pir.PartySupplier, actor, s)
	}
	for _, s := range customerSide {
		actor, ok := pir.NextActor(s)
		require.True(t, ok)
		assert.Equal(t, pir.PartyCustomer, actor, s)
	}
}
