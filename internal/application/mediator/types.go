package mediator

import "context"

// Request is any command or query struct. Handlers are looked up by its
// dynamic type, so requests are always sent as pointers.
type Request interface{}

// Response is whatever the handler returns; callers type-assert it
type Response interface{}

type RequestHandler interface {
	Handle(ctx context.Context, request Request) (Response, error)
}

// HandlerFunc adapts a plain function, and is also the shape of the
// "next" step handed to middleware
type HandlerFunc func(ctx context.Context, request Request) (Response, error)

func (f HandlerFunc) Handle(ctx context.Context, request Request) (Response, error) {
	return f(ctx, request)
}

// Middleware runs around every Send. The daemon installs request logging
// and Prometheus timing; the CLI installs neither.
type Middleware func(ctx context.Context, request Request, next HandlerFunc) (Response, error)
