package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/graphsock/graphsock/pkg/protocol"
	"github.com/graphsock/graphsock/pkg/subscription"
)

var flagSubVariables string

var subscribeCmd = &cobra.Command{
	Use:   "subscribe <document or @file>",
	Short: "Stream subscription frames until interrupted",
	Long: `Start a GraphQL subscription and print every pushed frame as a
JSON line. Keepalives are filtered out. Ctrl+C unsubscribes, informs the
server and exits.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readDocument(args[0])
		if err != nil {
			return err
		}

		variables, err := parseVariables(flagSubVariables)
		if err != nil {
			return err
		}

		s, err := resolveSettings()
		if err != nil {
			return err
		}
		if s.wsEndpoint == "" {
			return fmt.Errorf("no websocket endpoint configured")
		}

		sess, err := subscription.Dial(cmd.Context(), s.wsEndpoint, subscription.WithLogger(s.log))
		if err != nil {
			return err
		}
		defer func() { _ = sess.Close() }()

		id, err := sess.Subscribe(cmd.Context(), doc, variables, s.wsHeaders(),
			func(id string, msg *protocol.Message) {
				fmt.Fprintln(cmd.OutOrStdout(), string(msg.Payload))
			})
		if err != nil {
			return err
		}
		s.log.Info("subscribed", "id", id)

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(interrupt)

		// Block until the user interrupts or the server ends the
		// subscription.
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
	wait:
		for {
			select {
			case <-interrupt:
				break wait
			case <-cmd.Context().Done():
				break wait
			case <-ticker.C:
				if !sess.Running(id) {
					break wait
				}
			}
		}

		if err := sess.Unsubscribe(cmd.Context(), id); err != nil {
			s.log.Warn("unsubscribe failed", "id", id, "error", err)
		}
		return nil
	},
}

func init() {
	subscribeCmd.Flags().StringVar(&flagSubVariables, "variables", "", "operation variables as a JSON object")
}
