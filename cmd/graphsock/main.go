// graphsock CLI - GraphQL client over HTTP and websocket subscriptions
package main

import (
	"fmt"
	"os"

	"github.com/graphsock/graphsock/pkg/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
