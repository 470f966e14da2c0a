package core

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// SignatureEncoding is the string form a scheme stores signatures in
type SignatureEncoding int

const (
	EncodingHex SignatureEncoding = iota
	EncodingBase64
)

const messageTemplate = "%s\n\nAddress: %s\nTimestamp: %d\nExpires: %s\n\nThis signature will be valid for 24 hours."

// ISO8601Milli renders times the way the challenge message expects them.
const ISO8601Milli = "2006-01-02T15:04:05.000Z"

// Scheme describes one wallet family. Each scheme keeps its own session
// namespace (storage key and cookie name).
type Scheme struct {
	Name       string
	StorageKey string

	heading         string
	caseInsensitive bool
	encoding        SignatureEncoding
}

var (
	// Ethereum signs with secp256k1 personal-sign; the signer is recoverable.
	Ethereum = Scheme{
		Name:            "ethereum",
		StorageKey:      "tutorial_platform_session",
		heading:         "Sign this message to authenticate with Tutorial Platform.",
		caseInsensitive: true,
		encoding:        EncodingHex,
	}

	// Solana signs with ed25519 and uses base58 addresses.
	Solana = Scheme{
		Name:       "solana",
		StorageKey: "tutorial_platform_solana_session",
		heading:    "Sign this message to authenticate with Tutorial Platform using your Solana wallet.",
		encoding:   EncodingBase64,
	}
)

// Schemes lists every supported scheme
func Schemes() []Scheme {
	return []Scheme{Ethereum, Solana}
}

// SchemeByName looks up a scheme. An empty name selects Ethereum.
func SchemeByName(name string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Ethereum.Name:
		return Ethereum, nil
	case Solana.Name:
		return Solana, nil
	default:
		return Scheme{}, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
	}
}

// IsZero reports whether s is the zero Scheme
func (s Scheme) IsZero() bool {
	return s.Name == ""
}

// NormalizeAddress trims the address and lowercases it where the scheme's
// address format is case-insensitive. Base58 addresses are kept verbatim.
func (s Scheme) NormalizeAddress(address string) string {
	address = strings.TrimSpace(address)
	if s.caseInsensitive {
		return strings.ToLower(address)
	}
	return address
}

// SameAddress compares two addresses under the scheme's rules
func (s Scheme) SameAddress(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if s.caseInsensitive {
		return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
	}
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}

// EncodeSignature renders raw signature bytes in the scheme's string form
func (s Scheme) EncodeSignature(sig []byte) string {
	if s.encoding == EncodingBase64 {
		return base64.StdEncoding.EncodeToString(sig)
	}
	return hexutil.Encode(sig)
}

// DecodeSignature parses a signature string in the scheme's form
func (s Scheme) DecodeSignature(sig string) ([]byte, error) {
	sig = strings.TrimSpace(sig)
	if s.encoding == EncodingBase64 {
		return base64.StdEncoding.DecodeString(sig)
	}
	if !strings.HasPrefix(sig, "0x") && !strings.HasPrefix(sig, "0X") {
		sig = "0x" + sig
	}
	return hexutil.Decode(sig)
}

// BuildMessage renders the challenge a wallet is asked to sign. The output
// is a pure function of its inputs and is part of the wire contract: the
// verifier recovers the signer from these exact bytes.
func (s Scheme) BuildMessage(address string, now time.Time) string {
	issued := now.UnixMilli()
	expires := time.UnixMilli(issued + SessionTTL.Milliseconds()).UTC()
	return fmt.Sprintf(messageTemplate, s.heading, address, issued, expires.Format(ISO8601Milli))
}

func (s Scheme) String() string {
	return s.Name
}
