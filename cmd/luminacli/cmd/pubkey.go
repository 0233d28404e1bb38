package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thetatoken/lumina/cmd/luminacli/cmd/utils"
	"github.com/thetatoken/lumina/wallet"
)

// pubkeyCmd exports the public key of an account
var pubkeyCmd = &cobra.Command{
	Use:     "pubkey",
	Short:   "Export the public key of an account",
	Long:    `Export the public key at a derivation path. With --validate the device signs a fixed message that is verified against the key, with --display the key is shown on the device for comparison.`,
	Example: "luminacli pubkey --path \"44'/148'/0'\" --display",
	Run:     runPubkey,
}

func init() {
	pubkeyCmd.PreRun = bindPubkeyFlags
	pubkeyCmd.Flags().String("path", "", "derivation path (default from ledger.path)")
	pubkeyCmd.Flags().Bool("validate", true, "verify the key with a device signature")
	pubkeyCmd.Flags().Bool("display", false, "show the key on the device")
}

// bindPubkeyFlags binds the flags when the command runs, the path flag of the
// sign commands is bound to the same key.
func bindPubkeyFlags(cmd *cobra.Command, args []string) {
	viper.BindPFlag(wallet.CfgLedgerPath, pubkeyCmd.Flags().Lookup("path"))
	viper.BindPFlag(wallet.CfgLedgerValidate, pubkeyCmd.Flags().Lookup("validate"))
	viper.BindPFlag(wallet.CfgLedgerDisplay, pubkeyCmd.Flags().Lookup("display"))
}

func runPubkey(cmd *cobra.Command, args []string) {
	ctx, cancel := utils.SignalContext()
	defer cancel()

	path := utils.LedgerPath()
	w := utils.OpenWallet()
	defer w.Close()

	if viper.GetBool(wallet.CfgLedgerDisplay) {
		fmt.Println("Please compare the address shown on the device")
	}
	pubKey, err := w.PublicKey(ctx, path, viper.GetBool(wallet.CfgLedgerValidate), viper.GetBool(wallet.CfgLedgerDisplay))
	if err != nil {
		utils.Error("Failed to export the public key at %v: %v\n", path, err)
	}
	fmt.Printf("Path:       %v\n", path)
	fmt.Printf("Address:    %v\n", pubKey.Address)
	fmt.Printf("Public key: %v\n", hex.EncodeToString(pubKey.Raw))
}
