package core

import "time"

// SessionTTL is the fixed lifetime of a wallet session. Sessions are never
// extended; a new one is issued instead.
const SessionTTL = 24 * time.Hour

// Session is a time-boxed, signature-backed claim that the holder controls Address
type Session struct {
	Address   string `json:"address"`   // Signer address, normalized per scheme
	Signature string `json:"signature"` // Encoded signature over Message
	Message   string `json:"message"`   // Exact challenge that was signed
	Timestamp int64  `json:"timestamp"` // Issuance time, ms since epoch
	ExpiresAt int64  `json:"expiresAt"` // Timestamp + SessionTTL, ms since epoch
}

// NewSession assembles a session issued at issuedAt.
// The issue time is truncated to milliseconds, matching BuildMessage.
func NewSession(address, signature, message string, issuedAt time.Time) Session {
	ts := issuedAt.UnixMilli()
	return Session{
		Address:   address,
		Signature: signature,
		Message:   message,
		Timestamp: ts,
		ExpiresAt: ts + SessionTTL.Milliseconds(),
	}
}

// IssuedAt returns the issuance time
func (s Session) IssuedAt() time.Time {
	return time.UnixMilli(s.Timestamp)
}

// Expiry returns the expiry time
func (s Session) Expiry() time.Time {
	return time.UnixMilli(s.ExpiresAt)
}

// Expired reports whether now is past the session expiry.
// A session is still valid at exactly ExpiresAt.
func (s Session) Expired(now time.Time) bool {
	return now.UnixMilli() > s.ExpiresAt
}

// Credentials pairs a presented session with the wallet scheme it claims.
type Credentials struct {
	Scheme  Scheme
	Session Session
}

// Identity is the trusted result of a successful authorization.
type Identity struct {
	Scheme  Scheme
	Address string
}

// Owner returns the record owner this identity acts as
func (i Identity) Owner() Owner {
	return Owner{Scheme: i.Scheme.Name, Address: i.Address}
}

func (i Identity) String() string {
	return i.Address
}
