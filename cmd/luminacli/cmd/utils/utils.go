package utils

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"os/signal"
	"strings"
	"syscall"

	isatty "github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/thetatoken/lumina/common"
	"github.com/thetatoken/lumina/wallet"
	"github.com/thetatoken/lumina/wallet/types"
)

var buf *bufio.Reader

// InputIsTty reports whether stdin is attached to a terminal.
func InputIsTty() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// GetConfirmation reads one line from stdin.
func GetConfirmation() (confirmation string, err error) {
	confirmation, err = stdinLine()
	return
}

func stdinLine() (string, error) {
	if buf == nil {
		buf = bufio.NewReader(os.Stdin)
	}
	line, err := buf.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Error prints the message to stderr and exits.
func Error(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, msg, args...)
	os.Exit(1)
}

// DecodeHex decodes a hex string, with or without 0x prefix. Whitespace
// around and inside the string is ignored.
func DecodeHex(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return nil, errors.New("empty hex input")
	}
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "invalid hex input")
	}
	return data, nil
}

// ReadHex decodes all hex text read from r.
func ReadHex(r io.Reader) ([]byte, error) {
	text, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return DecodeHex(string(text))
}

// FormatSignature renders a signature as printed by the sign commands.
func FormatSignature(result *types.SignatureResult) string {
	return fmt.Sprintf("Signature (hex):    %s\nSignature (base64): %s", hex.EncodeToString(result.Signature), base64.StdEncoding.EncodeToString(result.Signature))
}

// OutputSignature prints the signature and, if outPath is set, writes its hex
// encoding to outPath.
func OutputSignature(result *types.SignatureResult, outPath string) error {
	fmt.Println(FormatSignature(result))
	if outPath == "" {
		return nil
	}
	if err := common.WriteFileAtomic(outPath, []byte(hex.EncodeToString(result.Signature)+"\n"), 0600); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Signature written to %v\n", outPath)
	return nil
}

// LedgerPath returns the configured derivation path or exits if the Lumina
// app would refuse it. The check runs before any device is opened.
func LedgerPath() string {
	path := viper.GetString(wallet.CfgLedgerPath)
	if err := CheckPath(path); err != nil {
		Error("Invalid derivation path %q: %v\n", path, err)
	}
	return path
}

// CheckPath verifies that path is a Lumina account path.
func CheckPath(path string) error {
	_, err := types.ParseLuminaPath(path)
	return err
}

// OpenWallet opens the attached Ledger or exits.
func OpenWallet() types.Wallet {
	w, err := wallet.OpenWallet()
	if err != nil {
		Error("Failed to open wallet: %v\n", err)
	}
	return w
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM, which aborts
// a device operation before its next frame.
func SignalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(signals)
	}()
	return ctx, cancel
}
