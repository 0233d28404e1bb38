package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thetatoken/lumina/cmd/luminacli/cmd/utils"
)

// configCmd queries the configuration of the Lumina app
var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Show the Lumina app configuration",
	Long:    `Show the version of the Lumina app running on the device and whether it signs multi-operation transactions.`,
	Example: "luminacli config",
	Run:     runConfig,
}

func runConfig(cmd *cobra.Command, args []string) {
	ctx, cancel := utils.SignalContext()
	defer cancel()

	wallet := utils.OpenWallet()
	defer wallet.Close()

	config, err := wallet.AppConfiguration(ctx)
	if err != nil {
		utils.Error("Failed to query the app configuration: %v\n", err)
	}
	fmt.Printf("Wallet:            %v\n", wallet.ID())
	fmt.Printf("App version:       %v\n", config.Version)
	fmt.Printf("Multi-op enabled:  %v\n", config.MultiOpsEnabled)
}
