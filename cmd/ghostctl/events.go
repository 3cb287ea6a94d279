package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Harshitk-cp/ghostprotocol/internal/config"
	"github.com/Harshitk-cp/ghostprotocol/internal/events"
	"github.com/spf13/cobra"
)

var eventsSubject string

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Watch engine events on NATS",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print events until interrupted",
	Example: `  NATS_URL=nats://localhost:4222 ghostctl events tail
  ghostctl events tail --subject 'ghost.mutation.>' -o json`,
	Args: cobra.NoArgs,
	RunE: runEventsTail,
}

func init() {
	eventsTailCmd.Flags().StringVar(&eventsSubject, "subject", "", "Subject to subscribe to (default: <prefix>.>)")
	eventsCmd.AddCommand(eventsTailCmd)
}

func runEventsTail(cmd *cobra.Command, args []string) error {
	url := config.NATSURL()
	if url == "" {
		return fmt.Errorf("NATS_URL is required")
	}
	subject := eventsSubject
	if subject == "" {
		subject = config.NATSSubjectPrefix() + ".>"
	}

	pub, err := events.Connect(url, logger)
	if err != nil {
		return err
	}
	defer pub.Close()

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := cmd.OutOrStdout()
	fmt.Fprintln(cmd.ErrOrStderr(), accentColor.Sprintf("listening on %s", subject))
	return pub.Tail(ctx, subject, func(e events.Event) {
		if output != formatTable {
			_ = writeStructured(w, e)
			return
		}
		fmt.Fprintf(w, "%s %s\n", headerColor.Sprint(e.Subject), string(e.Payload))
	})
}
