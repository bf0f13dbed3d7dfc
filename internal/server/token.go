package server

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/binary"
	"time"
)

const tokenTTL = 4 * time.Hour

// FormSigner issues and verifies the anti-tampering tokens carried by every
// POST form. A token is a random nonce and an issue timestamp signed with
// the configured secret, so submissions cannot be forged or replayed after
// expiry without any server-side session state.
type FormSigner struct {
	secret []byte
	now    func() time.Time
}

// NewFormSigner creates a signer from the application secret
func NewFormSigner(secret string) *FormSigner {
	return &FormSigner{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Generate issues a fresh signed token
func (s *FormSigner) Generate() string {
	payload := make([]byte, 24)
	if _, err := rand.Read(payload[:16]); err != nil {
		// crypto/rand failure means the process cannot do anything useful
		panic(err)
	}
	binary.BigEndian.PutUint64(payload[16:], uint64(s.now().Unix()))

	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(payload))
}

// Verify reports whether token was issued by this signer and has not
// expired
func (s *FormSigner) Verify(token string) bool {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(raw) != 24+sha256.Size {
		return false
	}

	payload, sum := raw[:24], raw[24:]
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload)
	if subtle.ConstantTimeCompare(mac.Sum(nil), sum) != 1 {
		return false
	}

	issued := time.Unix(int64(binary.BigEndian.Uint64(payload[16:])), 0)
	age := s.now().Sub(issued)
	return age >= 0 && age <= tokenTTL
}
