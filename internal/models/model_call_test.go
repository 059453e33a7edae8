package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCallBilledMinutes(t *testing.T) {
	require.Equal(t, int64(0), (&Call{DurationSeconds: 0}).BilledMinutes())
	require.Equal(t, int64(1), (&Call{DurationSeconds: 1}).BilledMinutes())
	require.Equal(t, int64(1), (&Call{DurationSeconds: 60}).BilledMinutes())
	require.Equal(t, int64(2), (&Call{DurationSeconds: 61}).BilledMinutes())

	var nilCall *Call
	require.Equal(t, int64(0), nilCall.BilledMinutes())
}

func TestClientMinutesRemaining(t *testing.T) {
	c := &Client{CallMinutesLimit: 1500, CallMinutesUsed: 1400}
	require.Equal(t, int64(100), c.MinutesRemaining())

	over := &Client{CallMinutesLimit: 500, CallMinutesUsed: 700}
	require.Equal(t, int64(0), over.MinutesRemaining())
}
