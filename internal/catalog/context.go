package catalog

import "fmt"

// Context is the caller-supplied scope hint for an upload: the kind of
// business entity the document is being attached to. It drives rule
// applicability and contextual default types.
type Context string

// Known upload contexts.
const (
	ContextGlobal      Context = "global"
	ContextProperty    Context = "property"
	ContextLease       Context = "lease"
	ContextTenant      Context = "tenant"
	ContextTransaction Context = "transaction"
)

// ParseContext validates a raw context name.
func ParseContext(s string) (Context, error) {
	switch c := Context(s); c {
	case ContextGlobal, ContextProperty, ContextLease, ContextTenant, ContextTransaction:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownContext, s)
}
