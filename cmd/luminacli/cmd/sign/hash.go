package sign

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thetatoken/lumina/cmd/luminacli/cmd/utils"
)

var (
	hashFlag string
	yesFlag  bool
)

// hashCmd signs a transaction hash
var hashCmd = &cobra.Command{
	Use:   "hash",
	Short: "Sign a transaction hash",
	Long: `Sign a 32 byte transaction hash. The device cannot show what is being signed, the app
refuses unless its hash signing setting is enabled.`,
	Example: "luminacli sign hash --hash 3a1b...9f --yes",
	Run:     runHash,
}

func init() {
	hashCmd.Flags().StringVar(&hashFlag, "hash", "", "transaction hash in hex")
	hashCmd.Flags().BoolVar(&yesFlag, "yes", false, "skip the confirmation prompt")
	hashCmd.MarkFlagRequired("hash")
}

func runHash(cmd *cobra.Command, args []string) {
	hash, err := utils.DecodeHex(hashFlag)
	if err != nil {
		utils.Error("Failed to read the hash: %v\n", err)
	}
	if !yesFlag && utils.InputIsTty() {
		fmt.Fprint(os.Stderr, "The device cannot display the transaction behind a hash. Continue? [y/N] ")
		confirmation, err := utils.GetConfirmation()
		if err != nil || !strings.EqualFold(confirmation, "y") {
			utils.Error("Aborted\n")
		}
	}

	ctx, cancel := utils.SignalContext()
	defer cancel()

	path := utils.LedgerPath()
	w := utils.OpenWallet()
	defer w.Close()

	result, err := w.SignHash(ctx, path, hash)
	if err != nil {
		utils.Error("Failed to sign the hash: %v\n", err)
	}
	if err := utils.OutputSignature(result, outFlag); err != nil {
		utils.Error("Failed to write the signature: %v\n", err)
	}
}
