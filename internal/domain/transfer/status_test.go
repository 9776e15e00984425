package transfer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bizsuite/ledger-api/internal/domain/transfer"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	all := []transfer.Status{
		transfer.StatusDraft, transfer.StatusPending, transfer.StatusApproved,
		transfer.StatusCompleted, transfer.StatusCancelled,
	}
	allowed := map[transfer.Status][]transfer.Status{
		transfer.StatusDraft:    {transfer.StatusPending, transfer.StatusCancelled},
		transfer.StatusPending:  {transfer.StatusApproved, transfer.StatusCancelled},
		transfer.StatusApproved: {transfer.StatusCompleted, transfer.StatusCancelled},
	}
	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s → %s", from, to)
		}
	}
}

func TestStatus_Terminales(t *testing.T) {
	assert.True(t, transfer.StatusCompleted.IsTerminal())
	assert.True(t, transfer.StatusCancelled.IsTerminal())
	assert.False(t, transfer.StatusApproved.IsTerminal())
	assert.False(t, transfer.Status("shipped").IsValid())
	assert.True(t, transfer.StatusDraft.IsValid())
}
