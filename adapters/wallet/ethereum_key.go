package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrAddressMismatch is returned when a wallet is asked to sign for an
// address it does not hold
var ErrAddressMismatch = errors.New("wallet does not hold the requested address")

// EthereumKeySigner signs personal-sign messages with a local secp256k1 key
type EthereumKeySigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewEthereumKeySigner wraps an existing private key
func NewEthereumKeySigner(key *ecdsa.PrivateKey) *EthereumKeySigner {
	return &EthereumKeySigner{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}
}

// GenerateEthereumKeySigner creates a signer with a fresh random key
func GenerateEthereumKeySigner() (*EthereumKeySigner, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return NewEthereumKeySigner(key), nil
}

// EthereumKeySignerFromHex loads a hex-encoded private key
func EthereumKeySignerFromHex(hexKey string) (*EthereumKeySigner, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return NewEthereumKeySigner(key), nil
}

// Address returns the checksummed account address
func (s *EthereumKeySigner) Address() string {
	return s.address.Hex()
}

// SignMessage produces a 65-byte personal-sign signature with V in {27, 28}
func (s *EthereumKeySigner) SignMessage(ctx context.Context, address string, message []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !strings.EqualFold(strings.TrimSpace(address), s.address.Hex()) {
		return nil, fmt.Errorf("%w: %s", ErrAddressMismatch, address)
	}

	sig, err := crypto.Sign(accounts.TextHash(message), s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27

	return sig, nil
}
