package verifier

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/layer-3/tutorauth/core"
	"github.com/layer-3/tutorauth/ports"
)

var errMalformedSignature = errors.New("malformed signature")

// RecoverVerifier checks personal-sign sessions by recovering the signer
// from the message and signature
type RecoverVerifier struct{}

// NewRecoverVerifier creates a verifier for address-recoverable sessions
func NewRecoverVerifier() ports.Verifier {
	return RecoverVerifier{}
}

// Verify returns true only when the session is unexpired, its message is
// the challenge for its address and timestamp, and the recovered signer
// matches the session address
func (RecoverVerifier) Verify(session core.Session, now time.Time) bool {
	if session.Expired(now) {
		return false
	}
	if session.Address == "" || session.Message == "" {
		return false
	}
	if !issuedChallenge(core.Ethereum, session) {
		return false
	}

	signer, err := RecoverAddress(session.Message, session.Signature)
	if err != nil {
		return false
	}

	return strings.EqualFold(signer.Hex(), strings.TrimSpace(session.Address))
}

// RecoverAddress derives the account that produced a personal-sign
// signature over message
func RecoverAddress(message, signature string) (addr common.Address, err error) {
	// SigToPub is fed attacker-controlled bytes
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errMalformedSignature, r)
		}
	}()

	sig, err := hexutil.Decode(strings.TrimSpace(signature))
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", errMalformedSignature, err)
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("%w: signature must be %d bytes", errMalformedSignature, crypto.SignatureLength)
	}

	// Wallets return V as 27/28, go-ethereum expects 0/1
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	if sig[crypto.RecoveryIDOffset] > 1 {
		return common.Address{}, fmt.Errorf("%w: invalid recovery id", errMalformedSignature)
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover public key: %w", err)
	}

	return crypto.PubkeyToAddress(*pub), nil
}
