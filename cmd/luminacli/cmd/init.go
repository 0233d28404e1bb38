package cmd

import (
	"fmt"
	"os"
	"path"

	"github.com/spf13/cobra"

	"github.com/thetatoken/lumina/cmd/luminacli/cmd/utils"
	"github.com/thetatoken/lumina/common"
)

// initCmd writes the default config file
var initCmd = &cobra.Command{
	Use:     "init",
	Short:   "Write the default config file",
	Long:    `Write the default config file into the config path.`,
	Example: "luminacli init --config ~/.luminacli",
	Run:     runInit,
}

func runInit(cmd *cobra.Command, args []string) {
	if err := os.MkdirAll(cfgPath, 0700); err != nil {
		utils.Error("Failed to create config folder: %v\n", err)
	}
	filePath := path.Join(cfgPath, "config.yaml")
	if common.FileExists(filePath) {
		utils.Error("Config file already exists: %v\n", filePath)
	}
	if err := common.WriteInitialConfig(filePath); err != nil {
		utils.Error("Failed to write config file: %v\n", err)
	}
	fmt.Printf("Config file written to %v\n", filePath)
}
