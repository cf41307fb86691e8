package main

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/mmynk/paygate/internal/rpc"
)

func balanceCmd() *cobra.Command {
	var (
		addr  string
		token string
	)

	cmd := &cobra.Command{
		Use:   "balance [merchant-id]",
		Short: "Print a merchant's wallet balance from a running server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}

			client := rpc.NewClient(http.DefaultClient, addr, connect.WithInterceptors(rpc.BearerToken(token)))
			resp, err := client.GetWalletBalance(cmd.Context(), connect.NewRequest(&rpc.MerchantRequest{MerchantID: id}))
			if err != nil {
				return err
			}
			return json.NewEncoder(os.Stdout).Encode(resp.Msg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "http://localhost:8080", "server base URL")
	cmd.Flags().StringVar(&token, "token", os.Getenv("PAYGATE_TOKEN"), "operator token")
	return cmd
}
