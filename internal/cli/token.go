package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"board-sync/pkg/utils"

	"github.com/spf13/cobra"
)

// TokenOptions holds flags for the token command.
type TokenOptions struct {
	*RootOptions
	Caller string
	TTL    time.Duration
	Secret string
}

// NewTokenCommand issues a bearer token for the protected HTTP routes. It needs only
// the signing secret, not a database.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TokenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for POST /api/sync",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := opts.Secret
			if secret == "" {
				secret = os.Getenv("JWT_SECRET")
			}
			if secret == "" {
				return fmt.Errorf("no signing secret: set --secret or JWT_SECRET")
			}
			utils.SetSecret(secret)

			token, err := utils.GenerateToken(opts.Caller, opts.TTL)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), map[string]string{"token": token}, func(w io.Writer) {
				fmt.Fprintln(w, token)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Caller, "caller", "syncctl", "caller name recorded in the token")
	cmd.Flags().DurationVar(&opts.TTL, "ttl", 24*time.Hour, "token lifetime")
	cmd.Flags().StringVar(&opts.Secret, "secret", "", "signing secret (default $JWT_SECRET)")
	return cmd
}
