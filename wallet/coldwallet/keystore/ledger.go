// This file contains the command client of the Lumina Ledger app. Requests
// are framed as APDUs, large transactions are streamed in several frames and
// the final status word decides between success, rejection and the fallback
// to hash signing used by app versions that cannot parse a transaction.

package keystore

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/thetatoken/lumina/crypto"
	"github.com/thetatoken/lumina/wallet/types"
)

var logger *log.Entry = log.WithFields(log.Fields{"prefix": "ledger"})

// verifyMessage is signed by the device to prove it owns an exported key.
const verifyMessage = "via lumina"

// ErrInvalidHashLength is returned when SignHash is given a digest of the
// wrong size.
var ErrInvalidHashLength = errors.New("ledger: invalid hash length")

var (
	publicKeyAccepted = []StatusWord{SWOK, SWKeepAlive}
	signTxAccepted    = []StatusWord{SWOK, SWUserCancelled, SWUnknownOperation, SWMultiOperationTransaction, SWKeepAlive}
	signHashAccepted  = []StatusWord{SWOK, SWUserCancelled, SWSafeModeRequired, SWUnsupported, SWKeepAlive}
)

// HashFunc digests a transaction for hash signing.
type HashFunc func(data []byte) []byte

// PathPolicy validates a derivation path before it is sent to the device.
type PathPolicy func(path types.DerivationPath) error

// Codec encodes public keys and verifies Ed25519 signatures.
type Codec interface {
	EncodePublicKey(raw []byte) (string, error)
	VerifySignature(message, signature, publicKey []byte) bool
}

type ed25519Codec struct{}

func (ed25519Codec) EncodePublicKey(raw []byte) (string, error) {
	return crypto.EncodePublicKey(raw)
}

func (ed25519Codec) VerifySignature(message, signature, publicKey []byte) bool {
	return crypto.VerifySignature(message, signature, publicKey)
}

//
// Client speaks the Lumina app protocol over a Transport. It holds no state
// between calls and does no locking of its own, see ExclusiveMiddleware.
//
type Client struct {
	transport   Transport
	hash        HashFunc
	codec       Codec
	policy      PathPolicy
	middlewares []Middleware
}

// Option configures a Client.
type Option func(*Client)

// WithMiddleware appends middlewares wrapping every public operation. The
// first one given is the outermost.
func WithMiddleware(middlewares ...Middleware) Option {
	return func(c *Client) {
		c.middlewares = append(c.middlewares, middlewares...)
	}
}

// WithHashFunc replaces the transaction hash used by the fallback.
func WithHashFunc(hash HashFunc) Option {
	return func(c *Client) {
		c.hash = hash
	}
}

// WithCodec replaces the public key codec.
func WithCodec(codec Codec) Option {
	return func(c *Client) {
		c.codec = codec
	}
}

// WithPathPolicy replaces the derivation path policy.
func WithPathPolicy(policy PathPolicy) Option {
	return func(c *Client) {
		c.policy = policy
	}
}

// NewClient creates a client on top of the transport.
func NewClient(transport Transport, opts ...Option) *Client {
	c := &Client{
		transport: transport,
		hash:      crypto.Hash,
		codec:     ed25519Codec{},
		policy:    types.CheckLuminaPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) invoke(ctx context.Context, op Operation, call Invoke) error {
	return chain(c.middlewares, op, call)(ctx)
}

// AppConfiguration queries the app version and whether it can sign
// multi-operation transactions.
func (c *Client) AppConfiguration(ctx context.Context) (*types.AppConfiguration, error) {
	var config *types.AppConfiguration
	err := c.invoke(ctx, OpAppConfiguration, func(ctx context.Context) error {
		body, _, err := c.exchange(ctx, newFrame(InsGetConfig, 0x00, 0x00, nil), []StatusWord{SWOK})
		if err != nil {
			return err
		}
		config, err = parseAppConfiguration(body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return config, nil
}

func parseAppConfiguration(body []byte) (*types.AppConfiguration, error) {
	if len(body) < 4 {
		return nil, errors.Wrapf(ErrInvalidResponse, "configuration of %d bytes, expected 4", len(body))
	}
	// Legacy apps report version 1.x without the multi-ops byte set, both
	// conditions are kept as the app reports them.
	return &types.AppConfiguration{
		Version:         fmt.Sprintf("%d.%d.%d", body[1], body[2], body[3]),
		MultiOpsEnabled: body[0] == 0x01 || body[1] < 0x02,
	}, nil
}

// PublicKey retrieves the account key at path. With validate set the device
// also signs a fixed message which is verified against the returned key, with
// display set the key is shown on the device screen.
func (c *Client) PublicKey(ctx context.Context, path string, validate, display bool) (*types.PublicKey, error) {
	var pubKey *types.PublicKey
	err := c.invoke(ctx, OpPublicKey, func(ctx context.Context) error {
		header, err := c.pathHeader(path)
		if err != nil {
			return err
		}
		data, err := withHeader(header, []byte(verifyMessage))
		if err != nil {
			return err
		}
		frame := newFrame(InsGetPublicKey, flag(validate), flag(display), data)
		body, _, err := c.exchange(ctx, frame, publicKeyAccepted)
		if err != nil {
			return err
		}
		pubKey, err = c.decodePublicKey(body, validate)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pubKey, nil
}

func (c *Client) decodePublicKey(body []byte, validate bool) (*types.PublicKey, error) {
	expected := crypto.PublicKeySize
	if validate {
		expected += crypto.SignatureSize
	}
	if len(body) < expected {
		return nil, errors.Wrapf(ErrInvalidResponse, "public key reply of %d bytes, expected %d", len(body), expected)
	}

	raw := append([]byte(nil), body[:crypto.PublicKeySize]...)
	address, err := c.codec.EncodePublicKey(raw)
	if err != nil {
		return nil, err
	}
	if validate {
		signature := body[crypto.PublicKeySize:expected]
		if !c.codec.VerifySignature([]byte(verifyMessage), signature, raw) {
			logger.Warnf("Signature of %s over the verification message does not verify, bad keypair or tampered device", address)
			return nil, ErrSignatureVerificationFailed
		}
	}
	return &types.PublicKey{Address: address, Raw: raw}, nil
}

// SignTransaction streams the transaction to the device and waits for the
// operator to approve it. App versions unable to parse the transaction get
// its hash signed instead.
func (c *Client) SignTransaction(ctx context.Context, path string, transaction []byte) (*types.SignatureResult, error) {
	var result *types.SignatureResult
	err := c.invoke(ctx, OpSignTransaction, func(ctx context.Context) error {
		var err error
		result, err = c.signTransaction(ctx, path, transaction)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SignHash signs a 32 byte transaction hash. The operator sees only the hash,
// prefer SignTransaction.
//
// Deprecated: use SignTransaction, which falls back to hash signing by itself.
func (c *Client) SignHash(ctx context.Context, path string, hash []byte) (*types.SignatureResult, error) {
	var result *types.SignatureResult
	err := c.invoke(ctx, OpSignHash, func(ctx context.Context) error {
		if len(hash) != crypto.HashSize {
			return errors.Wrapf(ErrInvalidHashLength, "expected %d bytes, got %d", crypto.HashSize, len(hash))
		}
		header, err := c.pathHeader(path)
		if err != nil {
			return err
		}
		result, err = c.signHash(ctx, header, hash)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) signTransaction(ctx context.Context, path string, transaction []byte) (*types.SignatureResult, error) {
	header, err := c.pathHeader(path)
	if err != nil {
		return nil, err
	}
	if len(transaction) > TxMaxSize {
		return nil, errors.Wrapf(ErrTransactionTooLarge, "%d bytes, at most %d allowed", len(transaction), TxMaxSize)
	}
	frames, err := transactionFrames(header, transaction)
	if err != nil {
		return nil, err
	}

	session := newSignSession(OpSignTransaction)
	var body []byte
	var status StatusWord
	for i, frame := range frames {
		session.moveTo(stateSending, "frame", i)
		body, status, err = c.exchange(ctx, frame, signTxAccepted)
		if err != nil {
			return nil, err
		}
		if i < len(frames)-1 && status != SWOK {
			return nil, &ProtocolViolationError{Frame: i, Frames: len(frames), Status: status}
		}
	}
	session.moveTo(stateAwaitingFinalStatus, "status", status)

	switch next := transactionTransition(status); next {
	case stateSuccess:
		session.moveTo(next)
		return &types.SignatureResult{Signature: append([]byte(nil), body...)}, nil
	case stateFallbackToHashSigning:
		session.moveTo(next, "status", status)
		return c.signHash(ctx, header, c.hash(transaction))
	default:
		session.moveTo(stateRejected)
		return nil, errors.Wrapf(ErrUserRejected, "status %v", status)
	}
}

func (c *Client) signHash(ctx context.Context, header, hash []byte) (*types.SignatureResult, error) {
	data, err := withHeader(header, hash)
	if err != nil {
		return nil, err
	}
	session := newSignSession(OpSignHash)
	session.moveTo(stateSending, "frame", 0)
	body, status, err := c.exchange(ctx, newFrame(InsSignTransactionHash, P1First, P2Last, data), signHashAccepted)
	if err != nil {
		return nil, err
	}
	session.moveTo(stateAwaitingFinalStatus, "status", status)

	switch status {
	case SWOK:
		session.moveTo(stateSuccess)
		return &types.SignatureResult{Signature: append([]byte(nil), body...)}, nil
	case SWSafeModeRequired:
		session.moveTo(stateRejected)
		return nil, ErrUnsafeModeRequired
	case SWUnsupported:
		session.moveTo(stateRejected)
		return nil, ErrHashSigningUnsupported
	default:
		session.moveTo(stateRejected)
		return nil, errors.Wrapf(ErrUserRejected, "status %v", status)
	}
}

// exchange sends the frame and answers KeepAlive requests with empty
// KeepAlive frames. The first other reply stands as the reply to the frame.
func (c *Client) exchange(ctx context.Context, frame Frame, accepted []StatusWord) ([]byte, StatusWord, error) {
	response, err := c.transport.Send(ctx, frame.Class, frame.Instruction, frame.P1, frame.P2, frame.Data, accepted)
	for {
		if err != nil {
			return nil, 0, err
		}
		body, status, perr := ParseStatusWord(response)
		if perr != nil {
			return nil, 0, perr
		}
		if status != SWKeepAlive {
			return body, status, nil
		}
		logger.Debugf("Ledger asked to keep the %v exchange alive", frame.Instruction)
		response, err = c.transport.Send(ctx, CLA, InsKeepAlive, P1More, P2Last, nil, accepted)
	}
}

// pathHeader parses and checks the path and returns its serialized form.
func (c *Client) pathHeader(path string) ([]byte, error) {
	derivationPath, err := types.ParseDerivationPath(path)
	if err != nil {
		return nil, err
	}
	if c.policy != nil {
		if err := c.policy(derivationPath); err != nil {
			return nil, err
		}
	}
	return derivationPath.Bytes()
}
