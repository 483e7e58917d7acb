package workflow

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/pattadon/foodcourt-agent/agent/contract"
)

// Router dispatches a classified request to the first registered handler
// whose predicate accepts it. Registration order is a hard contract: the
// cart workflow must precede exploration so cart operations are never
// reinterpreted as browse requests. The winning handler's result is
// returned verbatim; there is no chaining or fallthrough.
type Router struct {
	handlers []contractx.Workflow
}

func NewRouter(handlers ...contractx.Workflow) (*Router, error) {
	if len(handlers) == 0 {
		return nil, errors.New("at least one workflow is required")
	}
	for _, h := range handlers {
		if h == nil {
			return nil, errors.New("nil workflow handler")
		}
	}
	return &Router{handlers: handlers}, nil
}

func (r *Router) Dispatch(ctx context.Context, req contractx.Request) (contractx.Output, error) {
	for _, h := range r.handlers {
		if h.CanHandle(req) {
			return h.Execute(ctx, req)
		}
	}
	return contractx.Output{}, fmt.Errorf("%w: query=%q", contractx.ErrUnhandled, req.Query)
}

// HandlerNames exposes registration order for callers that need to
// verify precedence.
func (r *Router) HandlerNames() []string {
	names := make([]string, 0, len(r.handlers))
	for _, h := range r.handlers {
		names = append(names, h.Name())
	}
	return names
}
