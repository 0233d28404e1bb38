package cmd

import (
	"fmt"
	"os"
	"path"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thetatoken/lumina/cmd/luminacli/cmd/sign"
	"github.com/thetatoken/lumina/cmd/luminacli/cmd/utils"
	"github.com/thetatoken/lumina/common"
	"github.com/thetatoken/lumina/common/util"
)

var cfgPath string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "luminacli",
	Short: "Lumina Ledger client",
	Long:  `Lumina Ledger client. Exports account keys and signs transactions with the Lumina app of a Ledger device.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgPath, "config", getDefaultConfigPath(), fmt.Sprintf("config path (default is %s)", getDefaultConfigPath()))
	RootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	viper.BindPFlag(common.CfgLogLevel, RootCmd.PersistentFlags().Lookup("log-level"))

	RootCmd.AddCommand(initCmd)
	RootCmd.AddCommand(configCmd)
	RootCmd.AddCommand(pubkeyCmd)
	RootCmd.AddCommand(sign.SignCmd)
	RootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.AddConfigPath(cfgPath)

	// Search config (without extension).
	viper.SetConfigName("config")

	viper.SetEnvPrefix("LUMINA")
	viper.AutomaticEnv() // read in environment variables that match
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	if err := util.InitLog(); err != nil {
		utils.Error("Failed to initialize logging: %v\n", err)
	}
}

func getDefaultConfigPath() string {
	home, err := homedir.Dir()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return path.Join(home, ".luminacli")
}
