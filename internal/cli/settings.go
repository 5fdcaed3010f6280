package cli

import (
	"fmt"
	"io"

	"board-sync/internal/features/settings"

	"github.com/spf13/cobra"
)

func NewSettingsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the board settings document",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the settings document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSettings(cmd, rootOpts, func(svc settings.SettingsService) error {
				s, err := svc.Get(cmd.Context())
				if err != nil {
					return err
				}
				return rootOpts.print(cmd.OutOrStdout(), s, func(w io.Writer) {
					fmt.Fprintf(w, "boardName:         %s\n", s.BoardName)
					fmt.Fprintf(w, "notificationEmail: %s\n", s.NotificationEmail)
				})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-email <address>",
		Short: "Set the notification recipient; an empty string disables notifications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSettings(cmd, rootOpts, func(svc settings.SettingsService) error {
				return svc.SetNotificationEmail(cmd.Context(), args[0])
			})
		},
	})

	return cmd
}

func withSettings(cmd *cobra.Command, rootOpts *RootOptions, fn func(settings.SettingsService) error) error {
	ctx := cmd.Context()
	e, err := openEnv(ctx, rootOpts)
	if err != nil {
		return err
	}
	defer e.Close(ctx)

	return fn(settings.NewSettingsService(settings.NewSettingsRepository(e.db, e.cfg)))
}
