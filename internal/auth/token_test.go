package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueVerify(t *testing.T) {
	tokens := NewTokens("secret")

	raw, err := tokens.Issue("t1", "s1", time.Hour)
	require.NoError(t, err)

	subject, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "t1", subject)
}

func TestVerify_WrongSecret(t *testing.T) {
	raw, err := NewTokens("secret").Issue("t1", "", 0)
	require.NoError(t, err)

	_, err = NewTokens("other").Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Expired(t *testing.T) {
	tokens := NewTokens("secret")
	issued := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return issued }

	raw, err := tokens.Issue("t1", "", time.Minute)
	require.NoError(t, err)

	tokens.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = tokens.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_NoSubject(t *testing.T) {
	tokens := NewTokens("secret")
	raw, err := tokens.Issue("", "", 0)
	require.NoError(t, err)

	_, err = tokens.Verify(raw)
	assert.ErrorIs(t, err, ErrNoSubject)
}

func TestVerify_Garbage(t *testing.T) {
	_, err := NewTokens("secret").Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
