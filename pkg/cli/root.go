// Package cli implements the graphsock command-line interface: one-shot
// GraphQL operations over HTTP and streaming subscriptions over the
// websocket transport.
package cli

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/graphsock/graphsock/internal/cliconfig"
	"github.com/graphsock/graphsock/pkg/logging"
)

var (
	flagEndpoint   string
	flagWSEndpoint string
	flagToken      string
	flagAuthHeader string
	flagLogLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "graphsock",
	Short: "GraphQL client with HTTP and websocket subscription transports",
	Long: `graphsock sends GraphQL operations to a remote API.

Queries and mutations go over HTTP POST; subscriptions stream over a
websocket speaking the graphql-ws protocol. Settings come from
.graphsock.yaml (local, then user config dir) and are overridden by
flags.`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagEndpoint, "endpoint", "", "HTTP GraphQL endpoint URL")
	pf.StringVar(&flagWSEndpoint, "ws-endpoint", "", "websocket endpoint (default: derived from --endpoint)")
	pf.StringVar(&flagToken, "token", "", "auth token to send with every request")
	pf.StringVar(&flagAuthHeader, "auth-header", "", "header the token travels in (default: Authorization)")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(subscribeCmd)
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// settings is the effective configuration after merging file and flags.
type settings struct {
	endpoint   string
	wsEndpoint string
	token      string
	authHeader string
	log        *slog.Logger
}

func resolveSettings() (*settings, error) {
	cfg, err := cliconfig.Load()
	if err != nil {
		return nil, err
	}

	s := &settings{
		endpoint:   cfg.Endpoint,
		wsEndpoint: cfg.WSEndpoint,
		token:      cfg.Token,
		authHeader: cfg.AuthHeader,
	}
	if flagEndpoint != "" {
		s.endpoint = flagEndpoint
	}
	if flagWSEndpoint != "" {
		s.wsEndpoint = flagWSEndpoint
	}
	if flagToken != "" {
		s.token = flagToken
	}
	if flagAuthHeader != "" {
		s.authHeader = flagAuthHeader
	}
	if s.wsEndpoint == "" {
		s.wsEndpoint = deriveWSEndpoint(s.endpoint)
	}

	level := cfg.LogLevel
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	s.log = logging.New(logging.Config{Level: logging.ParseLevel(level)})

	return s, nil
}

// deriveWSEndpoint swaps the URL scheme: http becomes ws, https becomes
// wss.
func deriveWSEndpoint(endpoint string) string {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return "wss://" + strings.TrimPrefix(endpoint, "https://")
	case strings.HasPrefix(endpoint, "http://"):
		return "ws://" + strings.TrimPrefix(endpoint, "http://")
	default:
		return endpoint
	}
}

// wsHeaders builds the per-operation headers carried inside
// connection_init and start payloads.
func (s *settings) wsHeaders() map[string]string {
	if s.token == "" {
		return nil
	}
	name := s.authHeader
	if name == "" {
		name = "Authorization"
	}
	return map[string]string{name: s.token}
}
