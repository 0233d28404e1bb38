package sign

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thetatoken/lumina/wallet"
)

var (
	pathFlag string
	outFlag  string
)

// SignCmd represents the sign command.
var SignCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign with the Ledger device",
	Long:  `Sign transactions or transaction hashes with the Lumina app.`,
}

func init() {
	SignCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		viper.BindPFlag(wallet.CfgLedgerPath, SignCmd.PersistentFlags().Lookup("path"))
	}

	SignCmd.PersistentFlags().StringVar(&pathFlag, "path", "", "derivation path (default from ledger.path)")
	SignCmd.PersistentFlags().StringVar(&outFlag, "out", "", "also write the hex signature to this file")

	SignCmd.AddCommand(txCmd)
	SignCmd.AddCommand(hashCmd)
}
