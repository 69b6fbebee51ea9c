package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vitalquest/vitalquest/internal/daemon"
)

func init() {
	notificationsCmd.Flags().BoolVar(&notifyMarkRead, "read", false, "Mark all as read after listing")
	notificationsCmd.Flags().BoolVar(&notifyClear, "clear", false, "Delete all notifications")
	rootCmd.AddCommand(notificationsCmd)
}

var (
	notifyMarkRead bool
	notifyClear    bool
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"inbox"},
	Short:   "Show notifications, newest first",
	RunE:    runNotifications,
}

func runNotifications(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	out := cmd.OutOrStdout()
	if notifyClear {
		if err := d.Engine.ClearNotifications(); err != nil {
			return err
		}
		fmt.Fprintln(out, "Notifications cleared.")
		return nil
	}

	list, unread := d.Engine.Notifications()
	if len(list) == 0 {
		fmt.Fprintln(out, "No notifications.")
		return nil
	}
	fmt.Fprintf(out, "%d unread\n", unread)
	for _, n := range list {
		mark := " "
		if !n.Read {
			mark = "*"
		}
		fmt.Fprintf(out, "%s %s  %s: %s\n", mark, n.Timestamp.Format("Jan 02 15:04"), n.Title, n.Message)
	}

	if notifyMarkRead {
		return d.Engine.MarkAllNotificationsRead()
	}
	return nil
}
