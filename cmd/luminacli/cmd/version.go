package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thetatoken/lumina/version"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version of current Luminacli binary.",
	Run:   runVersion,
}

func runVersion(cmd *cobra.Command, args []string) {
	fmt.Println(version.String())
}
