package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"proxymanager/backend/service/shared"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

var commandVersion = &cobra.Command{
	Use:   "version",
	Short: "Print current version of proxymanager",
	Args:  cobra.NoArgs,
	Run:   printVersion,
}

var commandConfig = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		out, err := cfg.Marshal()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var nameOnly bool

func init() {
	commandVersion.Flags().BoolVarP(&nameOnly, "name", "n", false, "print version name only")
	mainCommand.AddCommand(commandVersion, commandConfig)
}

func printVersion(cmd *cobra.Command, args []string) {
	if nameOnly {
		fmt.Fprintln(cmd.OutOrStdout(), Version)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "proxymanager %s (%s, %s/%s, platform %s)\n",
		Version, runtime.Version(), runtime.GOOS, runtime.GOARCH, shared.PlatformVersion())
}
