// Adapted for Theta
// Copyright 2017 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package coldwallet

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/karalabe/hid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	ks "github.com/thetatoken/lumina/wallet/coldwallet/keystore"
	"github.com/thetatoken/lumina/wallet/types"
)

var logger *log.Entry = log.WithFields(log.Fields{"prefix": "coldwallet"})

// LedgerScheme is the protocol scheme prefixing wallet IDs.
const LedgerScheme = "ledger"

// refreshThrottling is the minimum time between wallet refreshes to avoid USB
// trashing.
const refreshThrottling = 500 * time.Millisecond

// ledgerVendorID is the USB vendor identifier of Ledger devices.
const ledgerVendorID = 0x2c97

// ledgerProductIDs lists the legacy and the HID + WebUSB product identifiers
// of the supported Ledger models.
var ledgerProductIDs = []uint16{
	0x0000 /* Ledger Blue */, 0x0001 /* Ledger Nano S */, 0x0004 /* Ledger Nano X */, 0x0005 /* Ledger Nano S Plus */,
	0x0011 /* Ledger Blue */, 0x1011 /* Ledger Nano S */, 0x4011 /* Ledger Nano X */, 0x5011, /* Ledger Nano S Plus */
	0x0015 /* Ledger Blue */, 0x1015 /* Ledger Nano S */, 0x4015 /* Ledger Nano X */, 0x5015, /* Ledger Nano S Plus */
}

// Hub opens the Ledger devices attached over USB.
type Hub struct {
	scheme     string   // Protocol scheme prefixing wallet IDs
	vendorID   uint16   // USB vendor identifier used for device discovery
	productIDs []uint16 // USB product identifiers used for device discovery
	usageID    uint16   // USB usage page identifier used for macOS device discovery
	endpointID int      // USB endpoint identifier used for non-macOS device discovery

	refreshed time.Time     // Time instance when the list of wallets was last refreshed
	wallets   []*ColdWallet // List of USB wallet devices currently tracking

	stateLock sync.RWMutex // Protects the internals of the hub from racey access

	// TODO(karalabe): remove if hotplug lands on Windows
	commsPend int        // Number of operations blocking enumeration
	commsLock sync.Mutex // Lock protecting the pending counter and enumeration
}

// NewLedgerHub creates a new hardware wallet manager for Ledger devices.
func NewLedgerHub() (*Hub, error) {
	return newHub(LedgerScheme, ledgerVendorID, ledgerProductIDs, 0xffa0, 0)
}

// newHub creates a new hardware wallet manager for generic USB devices.
func newHub(scheme string, vendorID uint16, productIDs []uint16, usageID uint16, endpointID int) (*Hub, error) {
	if !hid.Supported() {
		return nil, errors.New("unsupported platform")
	}
	hub := &Hub{
		scheme:     scheme,
		vendorID:   vendorID,
		productIDs: productIDs,
		usageID:    usageID,
		endpointID: endpointID,
	}
	hub.refreshWallets()
	return hub, nil
}

// Wallets returns all the currently tracked USB
// devices that appear to be hardware wallets.
func (hub *Hub) Wallets() []types.Wallet {
	// Make sure the list of wallets is up to date
	hub.refreshWallets()

	hub.stateLock.RLock()
	defer hub.stateLock.RUnlock()

	cpy := make([]types.Wallet, len(hub.wallets))
	for i, wallet := range hub.wallets {
		cpy[i] = wallet
	}
	return cpy
}

// refreshWallets scans the USB devices attached to the machine and updates the
// list of wallets based on the found devices.
func (hub *Hub) refreshWallets() {
	// Don't scan the USB like crazy it the user fetches wallets in a loop
	hub.stateLock.RLock()
	elapsed := time.Since(hub.refreshed)
	hub.stateLock.RUnlock()

	if elapsed < refreshThrottling {
		return
	}
	// Probe the open wallets, failed ones are dropped by the merge below
	hub.stateLock.RLock()
	tracked := append([]*ColdWallet(nil), hub.wallets...)
	hub.stateLock.RUnlock()
	heartbeatWallets(tracked)

	// Retrieve the current list of USB wallet devices
	var devicesInfo []hid.DeviceInfo

	if runtime.GOOS == "linux" {
		// hidapi on Linux opens the device during enumeration to retrieve some infos,
		// breaking the Ledger protocol if that is waiting for user confirmation. This
		// is a bug acknowledged at Ledger, but it won't be fixed on old devices so we
		// need to prevent concurrent comms ourselves. The more elegant solution would
		// be to ditch enumeration in favor of hotplug events, but that don't work yet
		// on Windows so if we need to hack it anyway, this is more elegant for now.
		hub.commsLock.Lock()
		if hub.commsPend > 0 { // A confirmation is pending, don't refresh
			hub.commsLock.Unlock()
			return
		}
	}

	for _, deviceInfo := range hid.Enumerate(hub.vendorID, 0) {
		for _, id := range hub.productIDs {
			if deviceInfo.ProductID == id && (deviceInfo.UsagePage == hub.usageID || deviceInfo.Interface == hub.endpointID) {
				devicesInfo = append(devicesInfo, deviceInfo)
				break
			}
		}
	}

	if runtime.GOOS == "linux" {
		// See rationale before the enumeration why this is needed and only on Linux.
		hub.commsLock.Unlock()
	}

	hub.stateLock.Lock()
	defer hub.stateLock.Unlock()

	ids := make([]string, len(devicesInfo))
	for i, deviceInfo := range devicesInfo {
		ids[i] = assembleColdWalletID(hub.scheme, deviceInfo.Path)
	}
	hub.wallets = mergeWallets(hub.wallets, ids, func(i int) *ColdWallet {
		wallet := NewColdWallet(hub, devicesInfo[i])
		logger.Infof("Added new cold wallet: %v", wallet.ID())
		return wallet
	})
	hub.refreshed = time.Now()
}

// mergeWallets keeps the tracked wallets whose device is still attached and
// creates wallets for new devices. Tracked wallets and ids are both sorted.
func mergeWallets(tracked []*ColdWallet, ids []string, create func(i int) *ColdWallet) []*ColdWallet {
	wallets := make([]*ColdWallet, 0, len(ids))
	for i, id := range ids {
		// Drop wallets in front of the next device or those that failed for some reason
		for len(tracked) > 0 {
			// Abort if we're past the current device and found an operational one
			_, failure := tracked[0].Status()
			if compareColdWalletID(tracked[0].ID(), id) >= 0 || failure == nil {
				break
			}
			// Drop the stale and failed devices
			tracked[0].Close()
			tracked = tracked[1:]
		}
		// If there are no more wallets or the device is before the next, wrap new wallet
		if len(tracked) == 0 || compareColdWalletID(tracked[0].ID(), id) > 0 {
			wallets = append(wallets, create(i))
			continue
		}
		// If the device is the same as the first wallet, keep it
		if compareColdWalletID(tracked[0].ID(), id) == 0 {
			wallets = append(wallets, tracked[0])
			tracked = tracked[1:]
			continue
		}
		// The tracked wallet is operational but detached
		tracked[0].Close()
		tracked = tracked[1:]
		wallets = append(wallets, create(i))
	}
	// Drop any leftover wallets
	for _, wallet := range tracked {
		wallet.Close()
	}
	return wallets
}

// heartbeatWallets checks that every open wallet still answers. Closed wallets
// and wallets with a pending operation are skipped.
func heartbeatWallets(wallets []*ColdWallet) {
	for _, wallet := range wallets {
		err := wallet.Heartbeat(context.Background())
		if err != nil && !errors.Is(err, ErrWalletClosed) && !errors.Is(err, ks.ErrDeviceBusy) {
			logger.Warnf("Cold wallet %v failed its heartbeat: %v", wallet.ID(), err)
		}
	}
}

func (hub *Hub) beginComms() {
	hub.commsLock.Lock()
	hub.commsPend++
	hub.commsLock.Unlock()
}

func (hub *Hub) endComms() {
	hub.commsLock.Lock()
	hub.commsPend--
	hub.commsLock.Unlock()
}
