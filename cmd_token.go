package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/FACorreiaa/go-tripboard/internal/app/domain/auth"
)

var (
	tokenUserID    string
	tokenEmail     string
	tokenConfirmed bool
	tokenTTL       time.Duration
)

// tokenCmd mints a session token for local API testing with curl.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a signed session token for a user id",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		id, err := uuid.Parse(tokenUserID)
		if err != nil {
			return fmt.Errorf("invalid --user: %w", err)
		}
		token, err := auth.NewSessionValidator(cfg.Auth.JWTSecret, cfg.Auth.CookieName, logger).
			SignToken(id, tokenEmail, tokenConfirmed, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUserID, "user", "", "user id (uuid) to put in the subject")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "email claim")
	tokenCmd.Flags().BoolVar(&tokenConfirmed, "confirmed", true, "mark the email as confirmed")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")
}
