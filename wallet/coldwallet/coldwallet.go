package coldwallet

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/karalabe/hid"
	"github.com/pkg/errors"

	ks "github.com/thetatoken/lumina/wallet/coldwallet/keystore"
	"github.com/thetatoken/lumina/wallet/types"
)

var _ types.Wallet = (*ColdWallet)(nil)

// ErrWalletClosed is returned by device operations on a wallet that is not open.
var ErrWalletClosed = errors.New("wallet closed")

//
// ColdWallet implements the Wallet interface on top of a Ledger device
//
type ColdWallet struct {
	id string

	hub        *Hub                               // USB hub scanning, nil for wallets opened outside a hub
	openDevice func() (io.ReadWriteCloser, error) // Opens the USB device advertising itself as a hardware wallet
	options    []ks.Option                        // Extra client options applied on every open
	device     io.ReadWriteCloser                 // Open device, nil while the wallet is closed
	client     *ks.Client                         // Lumina app client bound to the open device
	config     *types.AppConfiguration            // App configuration read when the wallet was opened
	failure    error                              // Last health-check failure, reported by Status

	stateLock *sync.RWMutex // Protects read and write access to the wallet struct fields
}

// NewColdWallet creates a closed wallet for the device found by the hub.
func NewColdWallet(hub *Hub, deviceInfo hid.DeviceInfo) *ColdWallet {
	open := func() (io.ReadWriteCloser, error) {
		device, err := deviceInfo.Open()
		if err != nil {
			return nil, err
		}
		return usbDevice{device}, nil
	}
	return newColdWallet(assembleColdWalletID(hub.scheme, deviceInfo.Path), hub, open)
}

// usbDevice adapts the HID handle to io.ReadWriteCloser.
type usbDevice struct {
	*hid.Device
}

func (d usbDevice) Close() error {
	d.Device.Close()
	return nil
}

func newColdWallet(id string, hub *Hub, open func() (io.ReadWriteCloser, error), opts ...ks.Option) *ColdWallet {
	return &ColdWallet{
		id:         id,
		hub:        hub,
		openDevice: open,
		options:    opts,
		stateLock:  &sync.RWMutex{},
	}
}

func (w *ColdWallet) ID() string {
	return w.id
}

// Status reports the state of the wallet without talking to the device.
func (w *ColdWallet) Status() (string, error) {
	w.stateLock.RLock() // No device communication, state lock is enough
	defer w.stateLock.RUnlock()

	if w.failure != nil {
		return fmt.Sprintf("Failed: %v", w.failure), w.failure
	}
	if w.device == nil {
		return "Closed", nil
	}
	return fmt.Sprintf("Lumina app v%s online", w.config.Version), nil
}

// Open connects to the device and reads the app configuration. Opening an
// already open wallet is a no-op.
func (w *ColdWallet) Open() error {
	w.stateLock.Lock()
	defer w.stateLock.Unlock()

	if w.device != nil {
		return nil
	}
	device, err := w.openDevice()
	if err != nil {
		return errors.Wrapf(err, "failed to open %v", w.id)
	}
	opts := []ks.Option{ks.WithMiddleware(ks.LoggingMiddleware(logger.WithField("wallet", w.id)), ks.ExclusiveMiddleware())}
	client := ks.NewClient(ks.NewAPDUTransport(ks.NewHIDExchanger(device)), append(opts, w.options...)...)

	w.beginComms()
	config, err := client.AppConfiguration(context.Background())
	w.endComms()
	if err != nil {
		device.Close()
		return errors.Wrapf(err, "failed to query the Lumina app on %v", w.id)
	}

	w.device = device
	w.client = client
	w.config = config
	w.failure = nil
	return nil
}

// Close releases the device. Duplicate closes are allowed.
func (w *ColdWallet) Close() error {
	w.stateLock.Lock()
	defer w.stateLock.Unlock()

	if w.device == nil {
		return nil
	}
	err := w.device.Close()
	w.device = nil
	w.client = nil
	w.config = nil
	return err
}

// Heartbeat checks that the Lumina app still answers and records the failure
// reported by Status if it does not. A closed or busy wallet is not probed.
func (w *ColdWallet) Heartbeat(ctx context.Context) error {
	_, err := w.AppConfiguration(ctx)
	if err != nil && err != ErrWalletClosed && !errors.Is(err, ks.ErrDeviceBusy) {
		w.stateLock.Lock()
		w.failure = err
		w.stateLock.Unlock()
	}
	return err
}

func (w *ColdWallet) AppConfiguration(ctx context.Context) (*types.AppConfiguration, error) {
	var config *types.AppConfiguration
	err := w.withClient(func(client *ks.Client) (err error) {
		config, err = client.AppConfiguration(ctx)
		return err
	})
	return config, err
}

func (w *ColdWallet) PublicKey(ctx context.Context, path string, validate, display bool) (*types.PublicKey, error) {
	var key *types.PublicKey
	err := w.withClient(func(client *ks.Client) (err error) {
		key, err = client.PublicKey(ctx, path, validate, display)
		return err
	})
	return key, err
}

func (w *ColdWallet) SignTransaction(ctx context.Context, path string, transaction []byte) (*types.SignatureResult, error) {
	var result *types.SignatureResult
	err := w.withClient(func(client *ks.Client) (err error) {
		result, err = client.SignTransaction(ctx, path, transaction)
		return err
	})
	return result, err
}

// SignHash signs a 32 byte digest.
//
// Deprecated: blind signing hides the transaction from the user, use
// SignTransaction instead.
func (w *ColdWallet) SignHash(ctx context.Context, path string, hash []byte) (*types.SignatureResult, error) {
	var result *types.SignatureResult
	err := w.withClient(func(client *ks.Client) (err error) {
		result, err = client.SignHash(ctx, path, hash)
		return err
	})
	return result, err
}

// withClient runs fn against the open device while holding off USB
// enumeration on the hub.
func (w *ColdWallet) withClient(fn func(client *ks.Client) error) error {
	w.stateLock.RLock()
	defer w.stateLock.RUnlock()

	if w.client == nil {
		return ErrWalletClosed
	}
	w.beginComms()
	defer w.endComms()

	return fn(w.client)
}

func (w *ColdWallet) beginComms() {
	if w.hub != nil {
		w.hub.beginComms()
	}
}

func (w *ColdWallet) endComms() {
	if w.hub != nil {
		w.hub.endComms()
	}
}

func assembleColdWalletID(scheme, path string) string {
	walletID := "coldwallet:" + scheme + ":" + path
	return walletID
}

func compareColdWalletID(id1, id2 string) int {
	return strings.Compare(id1, id2)
}
