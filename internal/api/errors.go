package api

import "errors"

// Error kinds surfaced by the bootstrap operations. Callers classify
// failures with errors.Is; the wrapped chain carries the detail.
var (
	// ErrConnectFailed covers SSH dial and authentication failures.
	ErrConnectFailed = errors.New("connect failed")

	// ErrUntrustedHost is returned when host-key verification rejects
	// the remote node's identity.
	ErrUntrustedHost = errors.New("untrusted host")

	// ErrTransferFailed covers an incomplete or failed remote copy.
	ErrTransferFailed = errors.New("transfer failed")

	// ErrWriteFailed covers local filesystem failures while persisting
	// the fetched credential.
	ErrWriteFailed = errors.New("write failed")

	// ErrCommandFailed covers a remote command exiting nonzero or
	// producing empty output.
	ErrCommandFailed = errors.New("command failed")

	// ErrInvalidRequest covers malformed or incomplete input.
	ErrInvalidRequest = errors.New("invalid request")
)
