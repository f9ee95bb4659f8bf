package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"proxymanager/backend/domain"
)

var commandSet = &cobra.Command{
	Use:   "set ADDR",
	Short: "Route the LAN settings and every dial-up connection through ADDR",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *app) error {
			return printReport(cmd.OutOrStdout(), rt.proxy.SetProxy(domain.ProxyAddress(args[0])))
		})
	},
}

var commandStatus = &cobra.Command{
	Use:   "status ADDR",
	Short: "Print true when the LAN settings route through ADDR",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *app) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), rt.proxy.ProxyEnabled(domain.ProxyAddress(args[0])))
			return err
		})
	},
}

var commandClean = &cobra.Command{
	Use:   "clean",
	Short: "Switch the LAN settings and every dial-up connection to direct",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *app) error {
			return printReport(cmd.OutOrStdout(), rt.proxy.ClearProxy())
		})
	},
}

var commandProfiles = &cobra.Command{
	Use:   "profiles",
	Short: "List dial-up and VPN connection names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *app) error {
			profiles, err := rt.proxy.Profiles()
			if err != nil {
				return fmt.Errorf("enumerate connection profiles: %w", err)
			}
			for _, p := range profiles {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		})
	},
}

func init() {
	mainCommand.AddCommand(commandSet, commandStatus, commandClean, commandProfiles)
}

func withRuntime(cmd *cobra.Command, fn func(rt *app) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	rt, err := newRuntime(cfg, false)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(rt)
}

// printReport writes the report as YAML and fails when the broadcast stopped early.
func printReport(w io.Writer, report domain.ApplyReport) error {
	out, err := yaml.Marshal(report)
	if err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return err
	}
	if report.Aborted {
		return fmt.Errorf("broadcast aborted: %s", report.AbortReason)
	}
	return nil
}
