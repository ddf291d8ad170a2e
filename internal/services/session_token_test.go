package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSessionTokensRoundTrip(t *testing.T) {
	tokens, err := NewSessionTokens("secret", time.Hour)
	require.NoError(t, err)

	tok, exp, err := tokens.Issue("s1")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	sid, err := tokens.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, "s1", sid)
}

func TestSessionTokensRejectForeignAndExpired(t *testing.T) {
	tokens, err := NewSessionTokens("secret", time.Minute)
	require.NoError(t, err)
	other, err := NewSessionTokens("other-secret", time.Minute)
	require.NoError(t, err)

	tok, _, err := other.Issue("s1")
	require.NoError(t, err)
	_, err = tokens.Verify(tok)
	require.True(t, errors.Is(err, ErrInvalidToken))

	tok, _, err = tokens.Issue("s1")
	require.NoError(t, err)
	tokens.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = tokens.Verify(tok)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = tokens.Verify("")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewSessionTokens("  ", time.Minute)
	require.Error(t, err)
}
