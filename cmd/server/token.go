package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/paygate/internal/auth"
)

func tokenCmd() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "token [operator]",
		Short: "Issue an operator token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is required")
			}

			token, err := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL).Generate(args[0], role)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&role, "role", "r", auth.RoleViewer, "token role (admin, viewer or provider)")
	return cmd
}
