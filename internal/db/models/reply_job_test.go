package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReplyJobStatus(t *testing.T) {
	for _, valid := range []string{"pending", "processing", "done", "failed", "cancelled"} {
		status, err := ParseReplyJobStatus(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, status.String())
	}

	_, err := ParseReplyJobStatus("unknown")
	assert.Error(t, err)
	_, err = ParseReplyJobStatus("")
	assert.Error(t, err)
}

func TestReplyJobStatusIsTerminal(t *testing.T) {
	assert.False(t, ReplyJobStatusPending.IsTerminal())
	assert.False(t, ReplyJobStatusProcessing.IsTerminal())
	assert.True(t, ReplyJobStatusDone.IsTerminal())
	assert.True(t, ReplyJobStatusFailed.IsTerminal())
	assert.True(t, ReplyJobStatusCancelled.IsTerminal())
}

func TestReplyJobValidate(t *testing.T) {
	job := ReplyJob{BookingID: 1, TriggerMessageID: 2, HostID: 3}
	assert.NoError(t, job.Validate())

	assert.Error(t, (&ReplyJob{TriggerMessageID: 2}).Validate())
	assert.Error(t, (&ReplyJob{BookingID: 1}).Validate())
}

func TestOrchestratorJobStatusIsTerminal(t *testing.T) {
	assert.False(t, OrchestratorJobStatusQueued.IsTerminal())
	assert.False(t, OrchestratorJobStatusPlanning.IsTerminal())
	assert.False(t, OrchestratorJobStatusEnriching.IsTerminal())
	assert.True(t, OrchestratorJobStatusComplete.IsTerminal())
	assert.True(t, OrchestratorJobStatusError.IsTerminal())
}

func TestBookingStatusChatEligible(t *testing.T) {
	assert.False(t, BookingStatusRequested.ChatEligible())
	assert.True(t, BookingStatusConfirmed.ChatEligible())
	assert.True(t, BookingStatusActive.ChatEligible())
	assert.False(t, BookingStatusCompleted.ChatEligible())
	assert.False(t, BookingStatusCancelled.ChatEligible())
}
