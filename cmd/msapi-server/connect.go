package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConnectCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Connect to a running server and print its cached metadata JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			metaJSON, err := fetchMetadata(addr)
			if err != nil {
				return err
			}
			fmt.Println(metaJSON)
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:9443", "host:port of the running server")
	return cmd
}
