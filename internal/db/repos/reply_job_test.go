package repos

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/tripmesh/concierge/internal/db/models"
)

// ReplyJobRepositoryTestSuite tests the reply job repository
type ReplyJobRepositoryTestSuite struct {
	DBRepositoryTestSuite
}

func TestReplyJobRepositorySuite(t *testing.T) {
	suite.Run(t, new(ReplyJobRepositoryTestSuite))
}

func (s *ReplyJobRepositoryTestSuite) TestUpsertIsIdempotent() {
	host := s.createTestHost(true)
	booking := s.createTestBooking(host.ID, models.BookingStatusConfirmed)
	trigger := s.createTestMessage(booking.ID, booking.GuestID, "what time is check-in?")

	dueAt := time.Now().Add(time.Minute).UTC().Truncate(time.Second)
	first := s.createTestJob(booking.ID, trigger.ID, host.ID, dueAt)
	s.NotZero(first.ID)

	// Re-enqueueing the same (booking, trigger) pair must not create a
	// second row.
	second := &models.ReplyJob{
		BookingID:        booking.ID,
		TriggerMessageID: trigger.ID,
		HostID:           host.ID,
		DueAt:            dueAt,
	}
	err := s.jobRepo.Upsert(s.ctx, second)
	s.Require().NoError(err)

	var count int64
	s.Require().NoError(s.db.Model(&models.ReplyJob{}).Count(&count).Error)
	s.Equal(int64(1), count)

	stored, err := s.jobRepo.GetByDedupKey(s.ctx, booking.ID, trigger.ID)
	s.Require().NoError(err)
	s.Equal(first.ID, stored.ID)
	s.Equal(models.ReplyJobStatusPending, stored.Status)
	s.WithinDuration(dueAt, stored.DueAt, time.Second)
}

func (s *ReplyJobRepositoryTestSuite) TestUpsertPreservesAttemptCount() {
	host := s.createTestHost(true)
	booking := s.createTestBooking(host.ID, models.BookingStatusConfirmed)
	trigger := s.createTestMessage(booking.ID, booking.GuestID, "hello?")

	job := s.createTestJob(booking.ID, trigger.ID, host.ID, time.Now().Add(-time.Minute))

	claimed, err := s.jobRepo.Claim(s.ctx, job.ID)
	s.Require().NoError(err)
	s.True(claimed)
	s.Require().NoError(s.jobRepo.Reschedule(s.ctx, job.ID, time.Now().Add(time.Hour), "transient store error"))

	// Retrigger the same pair: attempt history must survive the refresh,
	// the failure reason must be cleared.
	refresh := &models.ReplyJob{
		BookingID:        booking.ID,
		TriggerMessageID: trigger.ID,
		HostID:           host.ID,
		DueAt:            time.Now().Add(time.Minute),
	}
	s.Require().NoError(s.jobRepo.Upsert(s.ctx, refresh))

	stored, err := s.jobRepo.GetByID(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(1, stored.AttemptCount)
	s.Equal(models.ReplyJobStatusPending, stored.Status)
	s.Empty(stored.Error)
}

func (s *ReplyJobRepositoryTestSuite) TestUpsertRejectsInvalidJob() {
	err := s.jobRepo.Upsert(s.ctx, &models.ReplyJob{
		BookingID: 1,
		HostID:    1,
		DueAt:     time.Now(),
	})
	s.Error(err)
}

func (s *ReplyJobRepositoryTestSuite) TestFindDueOrdersOldestFirst() {
	host := s.createTestHost(true)
	booking := s.createTestBooking(host.ID, models.BookingStatusConfirmed)
	now := time.Now()

	m1 := s.createTestMessage(booking.ID, booking.GuestID, "one")
	m2 := s.createTestMessage(booking.ID, booking.GuestID, "two")
	m3 := s.createTestMessage(booking.ID, booking.GuestID, "three")

	newest := s.createTestJob(booking.ID, m1.ID, host.ID, now.Add(-time.Minute))
	oldest := s.createTestJob(booking.ID, m2.ID, host.ID, now.Add(-time.Hour))
	s.createTestJob(booking.ID, m3.ID, host.ID, now.Add(time.Hour)) // not due yet

	due, err := s.jobRepo.FindDue(s.ctx, now, 10)
	s.Require().NoError(err)
	s.Require().Len(due, 2)
	s.Equal(oldest.ID, due[0].ID)
	s.Equal(newest.ID, due[1].ID)

	limited, err := s.jobRepo.FindDue(s.ctx, now, 1)
	s.Require().NoError(err)
	s.Require().Len(limited, 1)
	s.Equal(oldest.ID, limited[0].ID)
}

func (s *ReplyJobRepositoryTestSuite) TestFindDueSkipsNonPending() {
	host := s.createTestHost(true)
	booking := s.createTestBooking(host.ID, models.BookingStatusConfirmed)
	trigger := s.createTestMessage(booking.ID, booking.GuestID, "ping")
	job := s.createTestJob(booking.ID, trigger.ID, host.ID, time.Now().Add(-time.Minute))

	claimed, err := s.jobRepo.Claim(s.ctx, job.ID)
	s.Require().NoError(err)
	s.True(claimed)

	due, err := s.jobRepo.FindDue(s.ctx, time.Now(), 10)
	s.Require().NoError(err)
	s.Empty(due)
}

func (s *ReplyJobRepositoryTestSuite) TestClaimGrantsAtMostOneWinner() {
	host := s.createTestHost(true)
	booking := s.createTestBooking(host.ID, models.BookingStatusConfirmed)
	trigger := s.createTestMessage(booking.ID, booking.GuestID, "ping")
	job := s.createTestJob(booking.ID, trigger.ID, host.ID, time.Now().Add(-time.Minute))

	first, err := s.jobRepo.Claim(s.ctx, job.ID)
	s.Require().NoError(err)
	s.True(first)

	// A second claimant hits the conditional update after the status
	// already moved and must see zero affected rows.
	second, err := s.jobRepo.Claim(s.ctx, job.ID)
	s.Require().NoError(err)
	s.False(second)

	stored, err := s.jobRepo.GetByID(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(models.ReplyJobStatusProcessing, stored.Status)
	s.Equal(1, stored.AttemptCount)
}

func (s *ReplyJobRepositoryTestSuite) TestClaimMissingJob() {
	claimed, err := s.jobRepo.Claim(s.ctx, 9999)
	s.Require().NoError(err)
	s.False(claimed)
}

func (s *ReplyJobRepositoryTestSuite) TestCompleteWithMessage() {
	host := s.createTestHost(true)
	booking := s.createTestBooking(host.ID, models.BookingStatusConfirmed)
	trigger := s.createTestMessage(booking.ID, booking.GuestID, "ping")
	job := s.createTestJob(booking.ID, trigger.ID, host.ID, time.Now().Add(-time.Minute))

	claimed, err := s.jobRepo.Claim(s.ctx, job.ID)
	s.Require().NoError(err)
	s.True(claimed)

	reply := &models.Message{
		BookingID: booking.ID,
		SenderID:  host.ID,
		Body:      "Check-in opens at 3pm.",
		Synthetic: true,
	}
	s.Require().NoError(s.jobRepo.CompleteWithMessage(s.ctx, job.ID, reply))
	s.NotZero(reply.ID)

	stored, err := s.jobRepo.GetByID(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(models.ReplyJobStatusDone, stored.Status)

	messages, err := s.messageRepo.ListByBooking(s.ctx, booking.ID, nil)
	s.Require().NoError(err)
	s.Len(messages, 2)
}

func (s *ReplyJobRepositoryTestSuite) TestCompleteWithMessageRollsBackOnUnclaimedJob() {
	host := s.createTestHost(true)
	booking := s.createTestBooking(host.ID, models.BookingStatusConfirmed)
	trigger := s.createTestMessage(booking.ID, booking.GuestID, "ping")
	job := s.createTestJob(booking.ID, trigger.ID, host.ID, time.Now().Add(-time.Minute))

	// Job is still pending, so the finalize inside the transaction matches
	// zero rows and the message create must roll back with it.
	reply := &models.Message{
		BookingID: booking.ID,
		SenderID:  host.ID,
		Body:      "should never persist",
		Synthetic: true,
	}
	err := s.jobRepo.CompleteWithMessage(s.ctx, job.ID, reply)
	s.Error(err)

	messages, err := s.messageRepo.ListByBooking(s.ctx, booking.ID, nil)
	s.Require().NoError(err)
	s.Len(messages, 1)

	stored, err := s.jobRepo.GetByID(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(models.ReplyJobStatusPending, stored.Status)
}

func (s *ReplyJobRepositoryTestSuite) TestTransitionsRequireProcessing() {
	host := s.createTestHost(true)
	booking := s.createTestBooking(host.ID, models.BookingStatusConfirmed)
	trigger := s.createTestMessage(booking.ID, booking.GuestID, "ping")
	job := s.createTestJob(booking.ID, trigger.ID, host.ID, time.Now().Add(-time.Minute))

	s.Error(s.jobRepo.MarkFailed(s.ctx, job.ID, "boom"))
	s.Error(s.jobRepo.MarkCancelled(s.ctx, job.ID, "gone"))
	s.Error(s.jobRepo.Reschedule(s.ctx, job.ID, time.Now(), "boom"))

	stored, err := s.jobRepo.GetByID(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(models.ReplyJobStatusPending, stored.Status)
}

func (s *ReplyJobRepositoryTestSuite) TestTerminalStatesStayTerminal() {
	host := s.createTestHost(true)
	booking := s.createTestBooking(host.ID, models.BookingStatusConfirmed)
	trigger := s.createTestMessage(booking.ID, booking.GuestID, "ping")
	job := s.createTestJob(booking.ID, trigger.ID, host.ID, time.Now().Add(-time.Minute))

	claimed, err := s.jobRepo.Claim(s.ctx, job.ID)
	s.Require().NoError(err)
	s.True(claimed)
	s.Require().NoError(s.jobRepo.MarkFailed(s.ctx, job.ID, "retries exhausted"))

	// Once failed, the job can never be claimed or transitioned again.
	claimed, err = s.jobRepo.Claim(s.ctx, job.ID)
	s.Require().NoError(err)
	s.False(claimed)
	s.Error(s.jobRepo.MarkCancelled(s.ctx, job.ID, "late cancel"))

	stored, err := s.jobRepo.GetByID(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(models.ReplyJobStatusFailed, stored.Status)
	s.Equal("retries exhausted", stored.Error)
}

func (s *ReplyJobRepositoryTestSuite) TestRescheduleReturnsJobToPending() {
	host := s.createTestHost(true)
	booking := s.createTestBooking(host.ID, models.BookingStatusConfirmed)
	trigger := s.createTestMessage(booking.ID, booking.GuestID, "ping")
	job := s.createTestJob(booking.ID, trigger.ID, host.ID, time.Now().Add(-time.Minute))

	claimed, err := s.jobRepo.Claim(s.ctx, job.ID)
	s.Require().NoError(err)
	s.True(claimed)

	retryAt := time.Now().Add(30 * time.Second).UTC().Truncate(time.Second)
	s.Require().NoError(s.jobRepo.Reschedule(s.ctx, job.ID, retryAt, "store unavailable"))

	stored, err := s.jobRepo.GetByID(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(models.ReplyJobStatusPending, stored.Status)
	s.Equal("store unavailable", stored.Error)
	s.WithinDuration(retryAt, stored.DueAt, time.Second)
	s.Equal(1, stored.AttemptCount)
}

func (s *ReplyJobRepositoryTestSuite) TestListExcludesCancelledByDefault() {
	host := s.createTestHost(true)
	booking := s.createTestBooking(host.ID, models.BookingStatusConfirmed)
	m1 := s.createTestMessage(booking.ID, booking.GuestID, "one")
	m2 := s.createTestMessage(booking.ID, booking.GuestID, "two")

	kept := s.createTestJob(booking.ID, m1.ID, host.ID, time.Now().Add(-time.Minute))
	dropped := s.createTestJob(booking.ID, m2.ID, host.ID, time.Now().Add(-time.Minute))

	claimed, err := s.jobRepo.Claim(s.ctx, dropped.ID)
	s.Require().NoError(err)
	s.True(claimed)
	s.Require().NoError(s.jobRepo.MarkCancelled(s.ctx, dropped.ID, "booking cancelled"))

	jobs, err := s.jobRepo.List(s.ctx, "", &models.ListOptions{Limit: models.DefaultLimit})
	s.Require().NoError(err)
	s.Require().Len(jobs, 1)
	s.Equal(kept.ID, jobs[0].ID)

	all, err := s.jobRepo.List(s.ctx, "", &models.ListOptions{Limit: models.DefaultLimit, IncludeCancelled: true})
	s.Require().NoError(err)
	s.Len(all, 2)

	cancelled, err := s.jobRepo.List(s.ctx, models.ReplyJobStatusCancelled, &models.ListOptions{Limit: models.DefaultLimit})
	s.Require().NoError(err)
	s.Require().Len(cancelled, 1)
	s.Equal(dropped.ID, cancelled[0].ID)
}
