package wallet

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/layer-3/tutorauth/core"
)

// PromptSigner hands the challenge to a human who signs it in an external
// wallet and pastes the signature back. It waits as long as it takes; only
// ctx cancellation or an empty answer ends the wait without a signature.
//
// A single reader goroutine owns the input for the signer's lifetime, so a
// canceled prompt leaves no stray reader behind and a line typed after the
// cancellation answers the next prompt.
type PromptSigner struct {
	scheme core.Scheme
	in     *bufio.Reader
	out    io.Writer

	start   sync.Once
	answers chan promptAnswer
}

// NewPromptSigner creates a signer reading answers from in
func NewPromptSigner(scheme core.Scheme, in io.Reader, out io.Writer) *PromptSigner {
	return &PromptSigner{
		scheme:  scheme,
		in:      bufio.NewReader(in),
		out:     out,
		answers: make(chan promptAnswer),
	}
}

type promptAnswer struct {
	line string
	err  error
}

func (p *PromptSigner) SignMessage(ctx context.Context, address string, message []byte) ([]byte, error) {
	p.start.Do(func() { go p.readAnswers() })

	fmt.Fprintf(p.out, "Sign the following message with %s wallet %s:\n\n%s\n\n", p.scheme.Name, address, message)
	fmt.Fprint(p.out, "Paste the signature (empty line to cancel): ")

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case a, ok := <-p.answers:
		if !ok {
			return nil, fmt.Errorf("%w: input closed", core.ErrProviderUnavailable)
		}
		line := strings.TrimSpace(a.line)
		if line == "" {
			if a.err != nil && a.err != io.EOF {
				return nil, fmt.Errorf("%w: %v", core.ErrProviderUnavailable, a.err)
			}
			return nil, core.ErrUserRejected
		}
		sig, err := p.scheme.DecodeSignature(line)
		if err != nil {
			return nil, fmt.Errorf("failed to decode signature: %w", err)
		}
		return sig, nil
	}
}

// readAnswers forwards input lines until the input ends
func (p *PromptSigner) readAnswers() {
	defer close(p.answers)
	for {
		line, err := p.in.ReadString('\n')
		p.answers <- promptAnswer{line: line, err: err}
		if err != nil {
			return
		}
	}
}
