package wallet

import "github.com/spf13/viper"

const (
	// CfgLedgerPath is the default account derivation path.
	CfgLedgerPath = "ledger.path"
	// CfgLedgerValidate sets whether exported public keys are verified with a device signature.
	CfgLedgerValidate = "ledger.validate"
	// CfgLedgerDisplay sets whether exported public keys are shown on the device screen.
	CfgLedgerDisplay = "ledger.display"
)

func init() {
	viper.SetDefault(CfgLedgerPath, "44'/148'/0'")
	viper.SetDefault(CfgLedgerValidate, true)
	viper.SetDefault(CfgLedgerDisplay, false)
}
