package ports

import "context"

// SignatureProvider is a wallet able to sign arbitrary messages for an
// address it holds. SignMessage may block until a human approves or rejects
// the request; rejection is reported as core.ErrUserRejected.
type SignatureProvider interface {
	SignMessage(ctx context.Context, address string, message []byte) ([]byte, error)
}
