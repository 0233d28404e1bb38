package sign

import (
	"io/ioutil"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thetatoken/lumina/cmd/luminacli/cmd/utils"
)

var (
	txFlag   string
	fileFlag string
)

// txCmd signs a transaction
var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Sign a transaction",
	Long: `Sign a transaction. The transaction is given as hex with --tx, as a binary file with --file,
or as hex on stdin. The device shows the transaction for review before signing, app versions
that cannot parse it fall back to signing its hash.`,
	Example: `luminacli sign tx --tx 0000000200... --out tx.sig
cat tx.hex | luminacli sign tx --path "44'/148'/1'"`,
	Run: runTx,
}

func init() {
	txCmd.Flags().StringVar(&txFlag, "tx", "", "transaction in hex")
	txCmd.Flags().StringVar(&fileFlag, "file", "", "file holding the binary transaction")
}

func runTx(cmd *cobra.Command, args []string) {
	transaction, err := readTransaction()
	if err != nil {
		utils.Error("Failed to read the transaction: %v\n", err)
	}

	ctx, cancel := utils.SignalContext()
	defer cancel()

	path := utils.LedgerPath()
	w := utils.OpenWallet()
	defer w.Close()

	log.Infof("Please review the transaction on the device")
	result, err := w.SignTransaction(ctx, path, transaction)
	if err != nil {
		utils.Error("Failed to sign the transaction: %v\n", err)
	}
	if err := utils.OutputSignature(result, outFlag); err != nil {
		utils.Error("Failed to write the signature: %v\n", err)
	}
}

func readTransaction() ([]byte, error) {
	switch {
	case txFlag != "" && fileFlag != "":
		return nil, errors.New("--tx and --file are exclusive")
	case txFlag != "":
		return utils.DecodeHex(txFlag)
	case fileFlag != "":
		return ioutil.ReadFile(fileFlag)
	case !utils.InputIsTty():
		return utils.ReadHex(os.Stdin)
	}
	return nil, errors.New("no transaction given, use --tx, --file or pipe hex into stdin")
}
