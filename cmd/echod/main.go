package main

// echod is a standalone echo daemon built on the runtcp runtime. It
// serves the TCP echo protocol by default and can run the HTTP flavor
// with --mode http. All other configuration comes from RUNTCP_*
// environment variables, which `echod settings` prints.

import (
	"fmt"
	"os"

	"github.com/asecurityteam/runtcp"
	"github.com/asecurityteam/settings/v2"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "echod",
		Short:        "Managed TCP/HTTP echo service",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCommand(), newSettingsCommand())
	return root
}

func newServeCommand() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the echo service until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := settings.NewEnvSource(os.Environ())
			if err != nil {
				return err
			}
			fetcher := &runtcp.StaticFetcher{Handlers: map[string]runtcp.ConnHandler{
				"echo":    &runtcp.EchoHandler{},
				"discard": runtcp.DiscardHandler{},
			}}
			return runtcp.StartMode(cmd.Context(), source, fetcher, mode)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", runtcp.BuildModeTCP, "One of tcp, tcp_mock, or http.")
	return cmd
}

func newSettingsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Print the environment variables that configure the service",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(runtcp.Help())
		},
	}
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
