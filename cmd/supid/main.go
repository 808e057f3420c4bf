/*
Command supid runs the OTP escrow node and builds transactions for it.

	supid init --chain-id supi-local --fund <address>="1000 XLM"
	supid start
	supid keygen
	supid sign create --receiver <address> --amount "100 XLM" --otp 482913
	supid sign cancel --payment-id <id>

Node configuration is read from SUPI_ prefixed environment variables and an
optional config.yaml in the home directory.
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/supi-pay/supi"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "supid",
		Short:         "OTP escrow node",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String(flagHome, defaultHome(), "directory holding config.yaml and the node data")

	root.AddCommand(
		newInitCmd(),
		newStartCmd(),
		newKeygenCmd(),
		newSignCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), supi.Version())
		},
	}
}
