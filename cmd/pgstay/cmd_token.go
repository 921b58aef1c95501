package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mmynk/pgstay/internal/auth"
	"github.com/mmynk/pgstay/internal/config"
	"github.com/mmynk/pgstay/internal/models"
	"github.com/mmynk/pgstay/internal/repository"
)

var tokenUserID string

// tokenCmd mints an API token
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an API token for a user in the Users sheet",
	Long: `Look the user up in the Users sheet and print a bearer token carrying
their ID, email and role. The token expires after TOKEN_TTL.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if cfg.JWTSecret == "" {
			return config.ErrMissingJWTSecret
		}

		a, err := newApp(cfg, false)
		if err != nil {
			return err
		}
		defer a.Close()

		// Tokens are only minted from live data, never from a fallback.
		res := a.repo.Users.Fetch(cmd.Context())
		if res.Err != nil {
			return fmt.Errorf("failed to read users: %w", res.Err)
		}
		idx := slices.IndexFunc(res.Items, func(u models.User) bool { return u.ID == tokenUserID })
		if idx < 0 {
			return fmt.Errorf("user %q: %w", tokenUserID, repository.ErrNotFound)
		}

		token, err := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL).Generate(&res.Items[idx])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUserID, "user", "", "ID of the user in the Users sheet")
	_ = tokenCmd.MarkFlagRequired("user")
}
