package keystore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Operation names a public client operation.
type Operation string

const (
	OpAppConfiguration Operation = "AppConfiguration"
	OpPublicKey        Operation = "PublicKey"
	OpSignTransaction  Operation = "SignTransaction"
	OpSignHash         Operation = "SignHash"
)

// Invoke runs the wrapped operation.
type Invoke func(ctx context.Context) error

// Middleware wraps every public operation of a Client. It must call next at
// most once and return its error, possibly annotated.
type Middleware func(ctx context.Context, op Operation, next Invoke) error

// chain applies middlewares so that the first one is the outermost.
func chain(middlewares []Middleware, op Operation, call Invoke) Invoke {
	next := call
	for i := len(middlewares) - 1; i >= 0; i-- {
		m, inner := middlewares[i], next
		next = func(ctx context.Context) error {
			return m(ctx, op, inner)
		}
	}
	return next
}

// LoggingMiddleware logs the start and outcome of every operation.
func LoggingMiddleware(entry *log.Entry) Middleware {
	return func(ctx context.Context, op Operation, next Invoke) error {
		start := time.Now()
		entry.WithField("op", op).Debug("Ledger operation started")

		err := next(ctx)

		opLogger := entry.WithFields(log.Fields{"op": op, "elapsed": time.Since(start)})
		switch {
		case err == nil:
			opLogger.Info("Ledger operation completed")
		case errors.Is(err, ErrSignatureVerificationFailed):
			opLogger.Errorf("Ledger returned a public key it cannot sign for, the device may be tampered with: %v", err)
		case errors.Is(err, ErrUserRejected):
			opLogger.Info("Ledger operation rejected on the device")
		default:
			opLogger.Warnf("Ledger operation failed: %v", err)
		}
		return err
	}
}

// ExclusiveMiddleware allows a single pending operation per client. The
// device protocol breaks if frames of two operations interleave, so a
// concurrent caller fails fast with ErrDeviceBusy.
func ExclusiveMiddleware() Middleware {
	pending := make(chan struct{}, 1)
	return func(ctx context.Context, op Operation, next Invoke) error {
		select {
		case pending <- struct{}{}:
		default:
			return errors.Wrapf(ErrDeviceBusy, "%s requested", op)
		}
		defer func() { <-pending }()
		return next(ctx)
	}
}
