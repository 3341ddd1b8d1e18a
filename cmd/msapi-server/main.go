// Command msapi-server runs the standard protocol's application and
// server cores, and doubles as a thin CLI client for talking to one.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "msapi-server",
		Short: "Standard protocol application and server core",
	}

	root.PersistentFlags().String("config", "", "path to a YAML config file")
	root.PersistentFlags().String("log-level", "", "error|warning|info|debug|protocol")
	_ = viper.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("log-level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(newServeCommand())
	root.AddCommand(newConnectCommand())
	root.AddCommand(newParamsCommand())
	return root
}
