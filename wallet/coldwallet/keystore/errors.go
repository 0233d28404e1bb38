package keystore

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrSignatureVerificationFailed is returned when the device proves
	// ownership of a public key with a signature that does not verify. This
	// points at a corrupted or malicious device and must not be retried.
	ErrSignatureVerificationFailed = errors.New("ledger: public key signature verification failed, keypair is invalid")

	// ErrUserRejected is returned when the operator declines the request on
	// the device.
	ErrUserRejected = errors.New("ledger: transaction approval request was rejected")

	// ErrUnsafeModeRequired is returned when hash signing is disabled in the
	// app settings.
	ErrUnsafeModeRequired = errors.New("ledger: to sign multi-operation transactions 'Unsafe mode' must be enabled in the app settings")

	// ErrHashSigningUnsupported is returned by app versions without hash
	// signing.
	ErrHashSigningUnsupported = errors.New("ledger: hash signing is not supported by this app version")

	// ErrTransactionTooLarge is returned for transactions the app cannot hold.
	ErrTransactionTooLarge = errors.New("ledger: transaction too large")

	// ErrInvalidResponse is returned for truncated or malformed replies.
	ErrInvalidResponse = errors.New("ledger: invalid response")

	// ErrDeviceBusy is returned when an operation is already pending on the
	// same client.
	ErrDeviceBusy = errors.New("ledger: an action is already pending on the device, deny it or reconnect")

	// ErrInvalidHIDReply is returned if the device replies with a mismatching
	// HID header. This usually means the device is in browser mode.
	ErrInvalidHIDReply = errors.New("ledger: invalid HID reply header")
)

// StatusError reports a status word outside the set the command accepts.
type StatusError struct {
	Instruction Instruction
	Status      StatusWord
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ledger: unexpected status %v for %v", e.Status, e.Instruction)
}

// ProtocolViolationError reports an intermediate frame of a multi-frame
// transfer that was answered with anything but a continuation status.
type ProtocolViolationError struct {
	Frame  int
	Frames int
	Status StatusWord
}

func (e *ProtocolViolationError) Error() string {
	return fmt.Sprintf("ledger: frame %d of %d answered with %v, transfer aborted", e.Frame+1, e.Frames, e.Status)
}
