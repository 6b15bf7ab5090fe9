package slackapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

const (
	// HeaderTimestamp and HeaderSignature carry the request signature.
	HeaderTimestamp = "X-Slack-Request-Timestamp"
	HeaderSignature = "X-Slack-Signature"

	signatureVersion = "v0"

	// MaxClockSkew bounds how far a request timestamp may drift from local
	// time in either direction.
	MaxClockSkew = 5 * time.Minute
)

// Verifier checks Slack request signatures against a shared signing secret.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

// NewVerifier returns a Verifier using the wall clock.
func NewVerifier(signingSecret string) *Verifier {
	return &Verifier{secret: []byte(signingSecret), now: time.Now}
}

// NewVerifierWithClock returns a Verifier with a custom clock (for testing).
func NewVerifierWithClock(signingSecret string, now func() time.Time) *Verifier {
	return &Verifier{secret: []byte(signingSecret), now: now}
}

// Verify reports whether signature is the valid v0 signature of body at
// timestamp, and timestamp is within MaxClockSkew of now.
func (v *Verifier) Verify(body []byte, timestamp, signature string) bool {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	now := v.now().Unix()
	window := int64(MaxClockSkew / time.Second)
	if ts < now-window || ts > now+window {
		return false
	}

	expected := Sign(v.secret, timestamp, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign computes the "v0=<hex>" signature for body sent at timestamp.
func Sign(secret []byte, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(signatureVersion + ":" + timestamp + ":"))
	mac.Write(body)
	return signatureVersion + "=" + hex.EncodeToString(mac.Sum(nil))
}
