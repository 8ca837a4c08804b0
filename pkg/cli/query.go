package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/graphsock/graphsock/pkg/client"
	"github.com/graphsock/graphsock/pkg/operation"
	"github.com/graphsock/graphsock/pkg/subscription"
)

var (
	flagVariables string
	flagTransport string
)

var queryCmd = &cobra.Command{
	Use:   "query <document or @file>",
	Short: "Run a query or mutation and print the reply",
	Long: `Run a GraphQL operation and print the JSON reply.

The document is given inline or as @path to read it from a file.
Queries and mutations go over HTTP; pass --transport ws to send a
one-shot operation over the websocket path instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readDocument(args[0])
		if err != nil {
			return err
		}

		variables, err := parseVariables(flagVariables)
		if err != nil {
			return err
		}

		s, err := resolveSettings()
		if err != nil {
			return err
		}

		switch flagTransport {
		case "ws":
			return runWSQuery(cmd, s, doc, variables)
		case "http", "":
			return runHTTPQuery(cmd, s, doc, variables)
		default:
			return fmt.Errorf("unknown transport %q (want http or ws)", flagTransport)
		}
	},
}

func init() {
	queryCmd.Flags().StringVar(&flagVariables, "variables", "", "operation variables as a JSON object")
	queryCmd.Flags().StringVar(&flagTransport, "transport", "http", "transport to use: http or ws")
}

func runHTTPQuery(cmd *cobra.Command, s *settings, doc string, variables map[string]interface{}) error {
	if s.endpoint == "" {
		return fmt.Errorf("no endpoint configured (set --endpoint or .graphsock.yaml)")
	}
	if operation.IsSubscription(doc) {
		return fmt.Errorf("document is a subscription; use 'graphsock subscribe'")
	}

	opts := []client.Option{client.WithLogger(s.log)}
	if s.token != "" {
		opts = append(opts, client.WithAuthorization(s.token, s.authHeader))
	}

	resp, err := client.New(s.endpoint, opts...).Execute(cmd.Context(), doc, variables)
	if err != nil {
		return err
	}
	if !resp.OK() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: status %d after retries\n", resp.StatusCode)
	}

	return printJSON(cmd, resp.Raw)
}

func runWSQuery(cmd *cobra.Command, s *settings, doc string, variables map[string]interface{}) error {
	if s.wsEndpoint == "" {
		return fmt.Errorf("no websocket endpoint configured")
	}

	sess, err := subscription.Dial(cmd.Context(), s.wsEndpoint, subscription.WithLogger(s.log))
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	reply, err := sess.Query(cmd.Context(), doc, variables, s.wsHeaders())
	if err != nil {
		return err
	}
	return printJSON(cmd, reply.Payload)
}

// readDocument returns the operation document, reading @-prefixed
// arguments from the named file.
func readDocument(arg string) (string, error) {
	if len(arg) > 1 && arg[0] == '@' {
		data, err := os.ReadFile(arg[1:])
		if err != nil {
			return "", fmt.Errorf("read document: %w", err)
		}
		return string(data), nil
	}
	return arg, nil
}

func parseVariables(raw string) (map[string]interface{}, error) {
	if raw == "" {
		return nil, nil
	}
	var vars map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &vars); err != nil {
		return nil, fmt.Errorf("parse --variables: %w", err)
	}
	return vars, nil
}

func printJSON(cmd *cobra.Command, raw []byte) error {
	var buf interface{}
	if err := json.Unmarshal(raw, &buf); err != nil {
		// Not JSON; print as-is.
		fmt.Fprintln(cmd.OutOrStdout(), string(raw))
		return nil
	}
	pretty, err := json.MarshalIndent(buf, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
	return nil
}
