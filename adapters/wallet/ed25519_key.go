package wallet

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/base58"
)

// Ed25519KeySigner signs raw message bytes with a local ed25519 key. Its
// address is the base58 public key, as Solana wallets present it.
type Ed25519KeySigner struct {
	key     ed25519.PrivateKey
	address string
}

// NewEd25519KeySigner wraps an existing private key
func NewEd25519KeySigner(key ed25519.PrivateKey) *Ed25519KeySigner {
	pub := key.Public().(ed25519.PublicKey)
	return &Ed25519KeySigner{
		key:     key,
		address: base58.Encode(pub),
	}
}

// GenerateEd25519KeySigner creates a signer with a fresh random key
func GenerateEd25519KeySigner() (*Ed25519KeySigner, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return NewEd25519KeySigner(key), nil
}

// Ed25519KeySignerFromBase58 loads a base58 keypair (64 bytes) or seed (32 bytes)
func Ed25519KeySignerFromBase58(encoded string) (*Ed25519KeySigner, error) {
	raw := base58.Decode(strings.TrimSpace(encoded))
	switch len(raw) {
	case ed25519.PrivateKeySize:
		return NewEd25519KeySigner(ed25519.PrivateKey(raw)), nil
	case ed25519.SeedSize:
		return NewEd25519KeySigner(ed25519.NewKeyFromSeed(raw)), nil
	default:
		return nil, fmt.Errorf("failed to parse private key: got %d bytes", len(raw))
	}
}

// Address returns the base58 public key
func (s *Ed25519KeySigner) Address() string {
	return s.address
}

// SignMessage signs the message bytes as given
func (s *Ed25519KeySigner) SignMessage(ctx context.Context, address string, message []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(address) != s.address {
		return nil, fmt.Errorf("%w: %s", ErrAddressMismatch, address)
	}
	return ed25519.Sign(s.key, message), nil
}
