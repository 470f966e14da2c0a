package verifier

import (
	"github.com/layer-3/tutorauth/core"
	"github.com/layer-3/tutorauth/ports"
)

// ForSchemes returns one verifier per supported scheme, keyed by scheme
// name. Solana sessions are only checked for shape and expiry unless
// strict is set.
func ForSchemes(strict bool) map[string]ports.Verifier {
	solana := NewStructuralVerifier()
	if strict {
		solana = NewEd25519Verifier()
	}

	return map[string]ports.Verifier{
		core.Ethereum.Name: NewRecoverVerifier(),
		core.Solana.Name:   solana,
	}
}
