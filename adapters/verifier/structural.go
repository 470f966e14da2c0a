package verifier

import (
	"crypto/ed25519"
	"strings"
	"time"

	"github.com/btcsuite/btcutil/base58"
	"github.com/layer-3/tutorauth/core"
	"github.com/layer-3/tutorauth/ports"
)

// StructuralVerifier accepts any complete, unexpired session whose address
// is shaped like a base58 ed25519 public key.
//
// It does not check the signature at all: a caller can claim any such
// address. It is the default for schemes without signer recovery and should
// be replaced by Ed25519Verifier wherever clients are known to sign
// correctly.
type StructuralVerifier struct{}

// NewStructuralVerifier creates a completeness-only verifier
func NewStructuralVerifier() ports.Verifier {
	return StructuralVerifier{}
}

func (StructuralVerifier) Verify(session core.Session, now time.Time) bool {
	address := strings.TrimSpace(session.Address)
	if address == "" ||
		strings.TrimSpace(session.Signature) == "" ||
		session.Message == "" {
		return false
	}
	if len(base58.Decode(address)) != ed25519.PublicKeySize {
		return false
	}
	return !session.Expired(now)
}
