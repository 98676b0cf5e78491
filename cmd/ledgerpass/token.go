package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	jwttoken "ledgerpass/internal/jwt_token"
	"ledgerpass/pkg/domain"
	"ledgerpass/pkg/platform/secrets"
)

// tokenCommand mints a bearer token that signs transactions as a principal.
// Intended for operators and local testing.
func tokenCommand() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <principal>",
		Short: "Mint a bearer token for a ledger principal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			principal, err := domain.ParsePrincipal(args[0])
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = cfg.Auth.TokenTTL
			}
			svc := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)
			token, err := svc.GenerateAccessToken(principal, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to auth.tokenTTL)")
	return cmd
}

// adminTokenCommand mints an operator token and the bcrypt hash to put in
// server.adminToken, so the plaintext never has to live in config.
func adminTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "admin-token",
		Short: "Generate an operator token and its bcrypt hash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := secrets.Generate()
			if err != nil {
				return err
			}
			hash, err := secrets.Hash(token)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "token: %s\nhash:  %s\n", token, hash)
			return err
		},
	}
}
