// Package middleware provides composable HTTP middleware and its configuration.
package middleware

import "net/http"

// System manages an ordered stack of HTTP middleware.
type System interface {
	Use(mw func(http.Handler) http.Handler)
	Apply(handler http.Handler) http.Handler
}

type stack struct {
	chain []func(http.Handler) http.Handler
}

// New creates an empty middleware System.
func New() System {
	return &stack{
		chain: []func(http.Handler) http.Handler{},
	}
}

func (s *stack) Use(fn func(http.Handler) http.Handler) {
	s.chain = append(s.chain, fn)
}

func (s *stack) Apply(handler http.Handler) http.Handler {
	for i := len(s.chain) - 1; i >= 0; i-- {
		handler = s.chain[i](handler)
	}
	return handler
}
