package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"board-sync/internal/features/chat"

	"github.com/spf13/cobra"
)

func NewPurgeChatsCommand(rootOpts *RootOptions) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "purge-chats",
		Short: "Delete the whole chat history",
		Long: `Delete every document in the chat collection.

The key must match CHAT_PURGE_KEY, the same secret the HTTP endpoint checks.
When --key is omitted it is read from CHAT_PURGE_KEY in the environment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				key = os.Getenv("CHAT_PURGE_KEY")
			}
			if key == "" {
				return errors.New("no purge key given")
			}

			ctx := cmd.Context()
			e, err := openEnv(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer e.Close(ctx)

			service := chat.NewChatService(chat.NewChatRepository(e.db, e.cfg), e.cfg, e.log)
			n, err := service.Purge(ctx, key)
			if err != nil {
				return err
			}
			return rootOpts.print(cmd.OutOrStdout(), map[string]int64{"deleted": n}, func(w io.Writer) {
				fmt.Fprintf(w, "deleted %d chat messages\n", n)
			})
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "purge secret")
	return cmd
}
