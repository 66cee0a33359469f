package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestJournalStats(t *testing.T) {
	journal, err := openJournal(":memory:")
	require.NoError(t, err)

	require.NoError(t, journal.Record(&FactRequest{
		ChatID: 100, UserID: 1, Latitude: 55.7558, Longitude: 37.6176,
		Outcome: outcomeDelivered, DurationMs: 1200,
	}))
	require.NoError(t, journal.Record(&FactRequest{
		ChatID: 200, UserID: 2, Latitude: 48.8566, Longitude: 2.3522,
		Outcome: outcomeDelivered, DurationMs: 900,
	}))
	require.NoError(t, journal.Record(&FactRequest{
		ChatID: 100, UserID: 1, Latitude: 55.7558, Longitude: 37.6176,
		Outcome: outcomeRateLimited, DurationMs: 1,
	}))

	stats, err := journal.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalRequests)
	assert.Equal(t, int64(2), stats.Delivered)
	assert.Equal(t, int64(2), stats.DistinctUsers)
}

func TestRequestJournalNilIsNoop(t *testing.T) {
	var journal *RequestJournal
	assert.NoError(t, journal.Record(&FactRequest{ChatID: 1, UserID: 1, Outcome: outcomeFailed}))
}
