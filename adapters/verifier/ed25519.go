package verifier

import (
	"crypto/ed25519"
	"encoding/base64"
	"strings"
	"time"

	"github.com/btcsuite/btcutil/base58"
	"github.com/layer-3/tutorauth/core"
	"github.com/layer-3/tutorauth/ports"
)

// Ed25519Verifier checks sessions whose address is a base58 ed25519 public
// key and whose signature is base64
type Ed25519Verifier struct{}

// NewEd25519Verifier creates a verifier that checks the ed25519 signature
func NewEd25519Verifier() ports.Verifier {
	return Ed25519Verifier{}
}

func (Ed25519Verifier) Verify(session core.Session, now time.Time) bool {
	if session.Expired(now) || session.Message == "" {
		return false
	}
	if !issuedChallenge(core.Solana, session) {
		return false
	}

	pub := base58.Decode(strings.TrimSpace(session.Address))
	if len(pub) != ed25519.PublicKeySize {
		return false
	}

	sig, err := base64.StdEncoding.DecodeString(strings.TrimSpace(session.Signature))
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}

	return ed25519.Verify(ed25519.PublicKey(pub), []byte(session.Message), sig)
}
