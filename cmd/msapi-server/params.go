package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newParamsCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Fetch the current parameter snapshot from a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := fetchParameters(addr)
			if err != nil {
				return err
			}
			for _, id := range f.Keys() {
				v, _ := f.Get(id)
				fmt.Printf("%d = %s\n", id, v.String())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:9443", "host:port of the running server")
	return cmd
}
