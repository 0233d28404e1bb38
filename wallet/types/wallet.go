package types

import (
	"context"
)

// AppConfiguration describes the Lumina app running on the device.
type AppConfiguration struct {
	Version         string // major.minor.patch
	MultiOpsEnabled bool   // Whether multi-operation transactions can be signed directly
}

// PublicKey is an account key as exported by the device.
type PublicKey struct {
	Address string // StrKey encoded public key (G...)
	Raw     []byte // 32 byte Ed25519 public key
}

// SignatureResult carries the raw signature returned by the device.
type SignatureResult struct {
	Signature []byte
}

//
// Wallet defines the interface of a hardware wallet holding Lumina keys
//
type Wallet interface {
	ID() string
	Status() (string, error)
	Open() error
	Close() error
	AppConfiguration(ctx context.Context) (*AppConfiguration, error)
	PublicKey(ctx context.Context, path string, validate, display bool) (*PublicKey, error)
	SignTransaction(ctx context.Context, path string, transaction []byte) (*SignatureResult, error)
	SignHash(ctx context.Context, path string, hash []byte) (*SignatureResult, error)
}
