// Package uploadlink implements the signed, time-bound tokens that let an
// anonymous candidate submit residence documents without an account.
//
// A token is the URL-safe base64 encoding of a compact JSON grant, joined by
// a single "." to the URL-safe base64 HMAC-SHA-256 signature over that
// encoded payload. Tokens are stateless: verification consults no storage,
// and an issued link stays valid until it expires. The only revocation path
// is rotating the signing secret.
package uploadlink

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/talentflow/talentflow-backend/internal/eligibility/domain"
	"github.com/talentflow/talentflow-backend/pkg/errors"
)

// DefaultTTL is how long an upload link stays valid unless configured
// otherwise.
const DefaultTTL = 14 * 24 * time.Hour

const separator = "."

// Signer issues and verifies upload-link tokens with a process-wide secret.
// The secret is fixed at construction; safe for unbounded concurrent use.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner creates a signer. A zero ttl falls back to DefaultTTL.
func NewSigner(secret []byte, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Signer{secret: secret, ttl: ttl, now: time.Now}
}

// NewSignerAt creates a signer with a fixed clock for tests.
func NewSignerAt(secret []byte, ttl time.Duration, now func() time.Time) *Signer {
	s := NewSigner(secret, ttl)
	s.now = now
	return s
}

// NewGrant creates a grant expiring after the signer's TTL.
func (s *Signer) NewGrant(issuerID, employeeID string) domain.UploadGrant {
	return domain.UploadGrant{
		IssuerID:   issuerID,
		EmployeeID: employeeID,
		ExpiresAt:  s.now().Add(s.ttl),
	}
}

// grantPayload is the compact wire form of a grant.
type grantPayload struct {
	Iss string `json:"iss"`
	Sub string `json:"sub"`
	Exp int64  `json:"exp"`
}

// Issue serializes and signs a grant.
func (s *Signer) Issue(grant domain.UploadGrant) (string, error) {
	payload, err := json.Marshal(grantPayload{
		Iss: grant.IssuerID,
		Sub: grant.EmployeeID,
		Exp: grant.ExpiresAt.Unix(),
	})
	if err != nil {
		return "", err
	}

	encoded := base64.RawURLEncoding.EncodeToString(payload)
	return encoded + separator + s.sign(encoded), nil
}

// Verify checks a token's signature and expiry and returns the embedded
// grant. All failure modes - malformed token, forged signature, expired
// grant - return the same invalid-token error so an untrusted caller learns
// nothing about why verification failed.
func (s *Signer) Verify(token string) (domain.UploadGrant, error) {
	parts := strings.Split(token, separator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return domain.UploadGrant{}, errors.TokenInvalid()
	}

	// Signature first, constant-time. Nothing in the payload is trusted
	// until the HMAC matches.
	expected := s.sign(parts[0])
	if !hmac.Equal([]byte(expected), []byte(parts[1])) {
		return domain.UploadGrant{}, errors.TokenInvalid()
	}

	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return domain.UploadGrant{}, errors.TokenInvalid()
	}

	var payload grantPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.UploadGrant{}, errors.TokenInvalid()
	}

	expiresAt := time.Unix(payload.Exp, 0)
	if !s.now().Before(expiresAt) {
		return domain.UploadGrant{}, errors.TokenInvalid()
	}

	return domain.UploadGrant{
		IssuerID:   payload.Iss,
		EmployeeID: payload.Sub,
		ExpiresAt:  expiresAt,
	}, nil
}

func (s *Signer) sign(encodedPayload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(encodedPayload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
