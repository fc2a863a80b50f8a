package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitpact/internal/events"
	"habitpact/internal/model"
)

func TestMissEvent_ExpandWithPartner(t *testing.T) {
	partnerID := int64(7)
	miss := MissEvent{
		HabitID:   3,
		HabitName: "Morning run",
		OwnerID:   1,
		OwnerName: "Alice",
		PartnerID: &partnerID,
		DateKey:   "2025-06-03",
		Source:    events.SourceMark,
		Amount:    50,
	}

	entries := miss.Expand()
	require.Len(t, entries, 2)

	penalty, reward := entries[0], entries[1]

	assert.Equal(t, int64(1), penalty.UserID)
	assert.Equal(t, model.TransactionTypePenalty, penalty.Type)
	assert.Equal(t, "Missed habit: Morning run", penalty.Reason)
	assert.Equal(t, "Alice", penalty.FromLabel)
	assert.Equal(t, "Accountability Partner", penalty.ToLabel)
	assert.Equal(t, model.TransactionStatusPending, penalty.Status)

	assert.Equal(t, int64(7), reward.UserID)
	assert.Equal(t, model.TransactionTypeReward, reward.Type)
	assert.Equal(t, "Alice missed: Morning run", reward.Reason)
	assert.Equal(t, "You", reward.ToLabel)
	assert.Equal(t, model.TransactionStatusPending, reward.Status)

	assert.Equal(t, penalty.Amount, reward.Amount)
}

func TestMissEvent_ExpandWithoutPartner(t *testing.T) {
	miss := MissEvent{
		HabitID:   3,
		HabitName: "Read",
		OwnerID:   1,
		OwnerName: "Alice",
		DateKey:   "2025-06-03",
		Source:    events.SourceMark,
		Amount:    50,
	}

	entries := miss.Expand()
	require.Len(t, entries, 1)
	assert.Equal(t, model.TransactionTypePenalty, entries[0].Type)
}

func TestMissEvent_BackfillReasonCarriesDate(t *testing.T) {
	partnerID := int64(2)
	miss := MissEvent{
		HabitName: "Stretch",
		OwnerName: "Bob",
		PartnerID: &partnerID,
		DateKey:   "2025-06-03",
		Source:    events.SourceBackfill,
		Amount:    50,
	}

	entries := miss.Expand()
	require.Len(t, entries, 2)
	assert.Equal(t, "Missed habit: Stretch (2025-06-03)", entries[0].Reason)
	assert.Equal(t, "Bob missed: Stretch (2025-06-03)", entries[1].Reason)
}

func TestMissEvent_Payload(t *testing.T) {
	now := time.Date(2025, 6, 5, 12, 0, 0, 0, time.UTC)
	partnerID := int64(9)
	miss := MissEvent{
		HabitID:   4,
		HabitName: "Journal",
		OwnerID:   2,
		OwnerName: "Carol",
		PartnerID: &partnerID,
		DateKey:   "2025-06-04",
		Source:    events.SourceBackfill,
		Amount:    50,
	}

	p := miss.Payload(now)
	assert.Equal(t, int64(4), p.HabitID)
	assert.Equal(t, "Carol", p.UserName)
	assert.Equal(t, events.SourceBackfill, p.Source)
	assert.Equal(t, now, p.MissedAt)
	assert.Equal(t, "4:2025-06-04", p.EventKey())
}
