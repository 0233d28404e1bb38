package wallet

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	cw "github.com/thetatoken/lumina/wallet/coldwallet"
	"github.com/thetatoken/lumina/wallet/types"
)

var logger *log.Entry = log.WithFields(log.Fields{"prefix": "wallet"})

// ErrNoColdWallet is returned when no Ledger device is attached.
var ErrNoColdWallet = errors.New("no cold wallet detected")

// OpenWallet opens the first Ledger device attached over USB.
func OpenWallet() (types.Wallet, error) {
	hub, err := cw.NewLedgerHub()
	if err != nil {
		return nil, err
	}
	return openFirst(hub.Wallets())
}

func openFirst(wallets []types.Wallet) (types.Wallet, error) {
	if len(wallets) == 0 {
		return nil, ErrNoColdWallet
	}
	if len(wallets) > 1 {
		logger.Warnf("Multiple cold wallets detected, using %v", wallets[0].ID())
	}
	wallet := wallets[0]
	if err := wallet.Open(); err != nil {
		return nil, err
	}
	status, _ := wallet.Status()
	logger.Infof("Opened cold wallet %v: %v", wallet.ID(), status)
	return wallet, nil
}
