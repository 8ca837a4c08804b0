// Package operation inspects GraphQL operation documents without
// executing or validating them against a schema. The client uses it to
// pick an operation name for the request body and to route a document to
// the right transport (subscriptions go over the websocket path,
// queries and mutations over HTTP).
package operation

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// Kind is the operation kind of a GraphQL document.
type Kind string

// Operation kinds.
const (
	KindQuery        Kind = "query"
	KindMutation     Kind = "mutation"
	KindSubscription Kind = "subscription"
)

// Info describes the first operation of a document.
type Info struct {
	// Kind is query, mutation or subscription.
	Kind Kind

	// Name is the operation name, empty for anonymous operations.
	Name string
}

// Inspect parses the document and returns info about its first operation.
// Schema validation does not happen here; only syntax is checked.
func Inspect(doc string) (*Info, error) {
	parsed, err := parser.ParseQuery(&ast.Source{Input: doc})
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	if len(parsed.Operations) == 0 {
		return nil, fmt.Errorf("document contains no operations")
	}

	op := parsed.Operations[0]
	info := &Info{Name: op.Name}

	switch op.Operation {
	case ast.Mutation:
		info.Kind = KindMutation
	case ast.Subscription:
		info.Kind = KindSubscription
	default:
		info.Kind = KindQuery
	}
	return info, nil
}

// IsSubscription reports whether the document's first operation is a
// subscription. Unparseable documents report false.
func IsSubscription(doc string) bool {
	info, err := Inspect(doc)
	return err == nil && info.Kind == KindSubscription
}
