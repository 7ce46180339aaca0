package cli

import (
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrima/records-portal/internal/auth"
)

func newTokenCommand() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Generate a staff API token and its hash",
		Long: `Generate a staff API token and its bcrypt hash.

Give the token to staff clients as "Authorization: Bearer <token>" and set
STAFF_TOKEN_HASH to the hash on the server. The token is not stored anywhere.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, hash, err := auth.GenerateStaffToken(cost)
			if err != nil {
				return err
			}
			printf(cmd, "Token:            %s\n", token)
			printf(cmd, "STAFF_TOKEN_HASH: %s\n", hash)
			return nil
		},
	}

	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}
