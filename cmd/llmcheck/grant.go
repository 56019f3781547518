package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/llmcheck/visibility/config"
	"github.com/llmcheck/visibility/internal/store"
)

func grantCMD() *cobra.Command {
	var email string
	var revoke bool
	var cfgPath string

	var cmd = &cobra.Command{
		Use:   "grant",
		Short: "Grant or revoke premium access for an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			dsn, err := cfg.Storage.Postgres.DSN()
			if err != nil {
				return err
			}
			ctx := context.Background()
			st, err := store.NewWithDSN(ctx, dsn)
			if err != nil {
				return err
			}
			defer st.DB.Close()

			if err := st.SetPremium(ctx, email, !revoke); err != nil {
				return err
			}
			if revoke {
				fmt.Printf("revoked premium for %s\n", email)
			} else {
				fmt.Printf("granted premium to %s\n", email)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email (required)")
	cmd.Flags().BoolVar(&revoke, "revoke", false, "revoke instead of grant")
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file directory (default is .)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
