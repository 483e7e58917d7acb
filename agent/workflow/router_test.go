package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	contractx "github.com/pattadon/foodcourt-agent/agent/contract"
	statex "github.com/pattadon/foodcourt-agent/agent/state"
)

type stubWorkflow struct {
	name    string
	accepts bool
	out     contractx.Output
	err     error
	calls   int
}

func (s *stubWorkflow) Name() string { return s.name }

func (s *stubWorkflow) CanHandle(req contractx.Request) bool { return s.accepts }

func (s *stubWorkflow) Execute(ctx context.Context, req contractx.Request) (contractx.Output, error) {
	s.calls++
	return s.out, s.err
}

func TestNewRouterRequiresHandlers(t *testing.T) {
	t.Parallel()

	if _, err := NewRouter(); err == nil {
		t.Fatal("expected error for empty handler list")
	}
	if _, err := NewRouter(&stubWorkflow{name: "a"}, nil); err == nil {
		t.Fatal("expected error for nil handler")
	}
}

func TestDispatchFirstMatchWins(t *testing.T) {
	t.Parallel()

	first := &stubWorkflow{name: "first", accepts: true, out: contractx.Output{Reply: "from first"}}
	second := &stubWorkflow{name: "second", accepts: true, out: contractx.Output{Reply: "from second"}}

	r, err := NewRouter(first, second)
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}

	out, err := r.Dispatch(context.Background(), contractx.Request{Query: "q"})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if out.Reply != "from first" {
		t.Fatalf("expected first handler to win, got %q", out.Reply)
	}
	if first.calls != 1 || second.calls != 0 {
		t.Fatalf("expected no fallthrough, calls: first=%d second=%d", first.calls, second.calls)
	}
}

func TestDispatchSkipsNonAccepting(t *testing.T) {
	t.Parallel()

	first := &stubWorkflow{name: "first", accepts: false}
	second := &stubWorkflow{name: "second", accepts: true, out: contractx.Output{Reply: "ok"}}

	r, err := NewRouter(first, second)
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}

	out, err := r.Dispatch(context.Background(), contractx.Request{})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if out.Reply != "ok" {
		t.Fatalf("unexpected reply %q", out.Reply)
	}
}

func TestDispatchUnhandled(t *testing.T) {
	t.Parallel()

	r, err := NewRouter(&stubWorkflow{name: "only", accepts: false})
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}

	_, err = r.Dispatch(context.Background(), contractx.Request{Query: "nonsense"})
	if !errors.Is(err, contractx.ErrUnhandled) {
		t.Fatalf("expected ErrUnhandled, got %v", err)
	}
}

func TestCartPrecedesExploration(t *testing.T) {
	t.Parallel()

	r, err := NewRouter(NewCartWorkflow(), NewExplorationWorkflow(&fakeCatalog{}))
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}

	names := r.HandlerNames()
	if len(names) != 2 || names[0] != "cart" || names[1] != "exploration" {
		t.Fatalf("unexpected handler order: %v", names)
	}

	// A cart intent must land in the cart workflow even though
	// exploration would also exist in the chain.
	conv := statex.NewConversation("s1", time.Now())
	out, err := r.Dispatch(context.Background(), contractx.Request{
		SessionID: "s1",
		Intent:    contractx.CartIntent{Action: contractx.CartActionView},
		Conv:      conv,
		Now:       time.Now(),
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if _, ok := out.Data.(contractx.CartPayload); !ok {
		t.Fatalf("expected cart payload, got %T", out.Data)
	}
}
