package uploadlink

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentflow/talentflow-backend/pkg/errors"
)

var (
	testSecret = []byte("test-signing-secret")
	issuedAt   = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
)

func signerAt(now time.Time, ttl time.Duration) *Signer {
	return NewSignerAt(testSecret, ttl, func() time.Time { return now })
}

func TestSigner_RoundTrip(t *testing.T) {
	s := signerAt(issuedAt, 0)

	grant := s.NewGrant("hr-user-1", "employee-42")
	assert.Equal(t, issuedAt.Add(DefaultTTL), grant.ExpiresAt)

	token, err := s.Issue(grant)
	require.NoError(t, err)
	assert.Equal(t, 2, len(strings.Split(token, ".")))

	verified, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "hr-user-1", verified.IssuerID)
	assert.Equal(t, "employee-42", verified.EmployeeID)
	assert.Equal(t, grant.ExpiresAt.Unix(), verified.ExpiresAt.Unix())
}

func TestSigner_TokenIsURLSafe(t *testing.T) {
	s := signerAt(issuedAt, 0)

	token, err := s.Issue(s.NewGrant("issuer", "employee"))
	require.NoError(t, err)

	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")
	assert.NotContains(t, token, "=")
}

func TestSigner_ExpiryBoundary(t *testing.T) {
	issue := signerAt(issuedAt, time.Hour)
	token, err := issue.Issue(issue.NewGrant("issuer", "employee"))
	require.NoError(t, err)

	t.Run("valid just before expiry", func(t *testing.T) {
		v := signerAt(issuedAt.Add(time.Hour-time.Second), time.Hour)
		_, err := v.Verify(token)
		assert.NoError(t, err)
	})

	t.Run("invalid at exact expiry instant", func(t *testing.T) {
		v := signerAt(issuedAt.Add(time.Hour), time.Hour)
		_, err := v.Verify(token)
		assert.Error(t, err)
	})

	t.Run("invalid after expiry", func(t *testing.T) {
		v := signerAt(issuedAt.Add(2*time.Hour), time.Hour)
		_, err := v.Verify(token)
		assert.Error(t, err)
	})
}

func TestSigner_RejectsTampering(t *testing.T) {
	s := signerAt(issuedAt, time.Hour)
	token, err := s.Issue(s.NewGrant("issuer", "employee-42"))
	require.NoError(t, err)
	parts := strings.Split(token, ".")

	// A payload claiming a different employee, re-encoded with the original
	// signature.
	forgedPayload := base64.RawURLEncoding.EncodeToString([]byte(`{"iss":"issuer","sub":"employee-99","exp":99999999999}`))

	flipped := []byte(parts[1])
	if flipped[0] == 'A' {
		flipped[0] = 'B'
	} else {
		flipped[0] = 'A'
	}

	tampered := []string{
		forgedPayload + "." + parts[1],
		parts[0] + "." + string(flipped),
		parts[0],
		parts[0] + ".",
		"." + parts[1],
		"",
		"...",
		"not-base64!." + parts[1],
		token + "extra",
	}

	for _, tok := range tampered {
		_, err := s.Verify(tok)
		assert.Error(t, err, "token %q must not verify", tok)
	}
}

func TestSigner_WrongSecretFails(t *testing.T) {
	s := signerAt(issuedAt, time.Hour)
	token, err := s.Issue(s.NewGrant("issuer", "employee"))
	require.NoError(t, err)

	other := NewSignerAt([]byte("a-different-secret"), time.Hour, func() time.Time { return issuedAt })
	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestSigner_AllFailuresLookIdentical(t *testing.T) {
	s := signerAt(issuedAt.Add(48*time.Hour), time.Hour)
	issue := signerAt(issuedAt, time.Hour)

	expired, err := issue.Issue(issue.NewGrant("issuer", "employee"))
	require.NoError(t, err)

	// Expired, malformed, and forged tokens must be indistinguishable to the
	// caller.
	failures := []string{expired, "garbage", "a.b"}
	var messages []string
	for _, tok := range failures {
		_, err := s.Verify(tok)
		require.Error(t, err)

		var appErr *errors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "TOKEN_INVALID", appErr.Code)
		messages = append(messages, appErr.Message)
	}
	for _, m := range messages {
		assert.Equal(t, messages[0], m)
	}
}

func TestSigner_ZeroTTLFallsBackToDefault(t *testing.T) {
	s := NewSigner(testSecret, 0)
	assert.Equal(t, DefaultTTL, s.ttl)

	s = NewSigner(testSecret, -time.Hour)
	assert.Equal(t, DefaultTTL, s.ttl)
}
