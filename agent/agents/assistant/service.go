package assistant

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"
	contractx "github.com/pattadon/foodcourt-agent/agent/contract"
	nodex "github.com/pattadon/foodcourt-agent/agent/nodes/assistant"
	statex "github.com/pattadon/foodcourt-agent/agent/state"
	workflowx "github.com/pattadon/foodcourt-agent/agent/workflow"
	retryx "github.com/pattadon/foodcourt-agent/pkg/retryx"
)

var (
	ErrInvalidSession = nodex.ErrInvalidSession
	ErrInvalidQuery   = nodex.ErrInvalidQuery
)

// Reply is one finished assistant turn.
type Reply struct {
	Text  string
	Voice string
}

// Assistant owns a full turn: classify, resolve location, dispatch to a
// workflow, narrate, persist. Turns within one session are serialized;
// different sessions run concurrently.
type Assistant struct {
	store      statex.Store
	locks      *statex.SessionLocks
	classifier contractx.Classifier
	geocoder   contractx.Geocoder
	narrator   contractx.Narrator
	router     *workflowx.Router

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now func() time.Time
}

func New(
	store statex.Store,
	classifier contractx.Classifier,
	geocoder contractx.Geocoder,
	catalog contractx.Catalog,
	narrator contractx.Narrator,
	retryPolicy retryx.Policy,
) (*Assistant, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	if classifier == nil {
		return nil, errors.New("classifier is required")
	}
	if catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if narrator == nil {
		return nil, errors.New("narrator is required")
	}

	// Cart must come before exploration: a cart operation is never
	// reinterpreted as a browse request.
	router, err := workflowx.NewRouter(
		workflowx.NewCartWorkflow(),
		workflowx.NewExplorationWorkflow(&retryCatalog{inner: catalog, policy: retryPolicy}),
	)
	if err != nil {
		return nil, err
	}

	a := &Assistant{
		store:      store,
		locks:      statex.NewSessionLocks(),
		classifier: &retryClassifier{inner: classifier, policy: retryPolicy},
		narrator:   &retryNarrator{inner: narrator, policy: retryPolicy},
		router:     router,
		now:        time.Now,
	}
	if geocoder != nil {
		a.geocoder = &retryGeocoder{inner: geocoder, policy: retryPolicy}
	}

	graphRunner, err := a.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	a.graphRunner = graphRunner

	return a, nil
}

func (a *Assistant) HandleMessage(ctx context.Context, sessionID string, query string) (Reply, error) {
	unlock := a.locks.Lock(sessionID)
	defer unlock()

	out, err := a.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID: sessionID,
		Query:     query,
	})
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: out.Reply, Voice: out.Voice}, nil
}

// EndSession drops the conversation record.
func (a *Assistant) EndSession(ctx context.Context, sessionID string) error {
	unlock := a.locks.Lock(sessionID)
	defer unlock()
	return a.store.Delete(ctx, sessionID)
}

type retryClassifier struct {
	inner  contractx.Classifier
	policy retryx.Policy
}

func (r *retryClassifier) Classify(ctx context.Context, query string, historyText string) (contractx.Classification, error) {
	return retryx.Do(ctx, r.policy, func(ctx context.Context) (contractx.Classification, error) {
		return r.inner.Classify(ctx, query, historyText)
	})
}

type retryGeocoder struct {
	inner  contractx.Geocoder
	policy retryx.Policy
}

func (r *retryGeocoder) Resolve(ctx context.Context, placeName string) (statex.Location, error) {
	return retryx.Do(ctx, r.policy, func(ctx context.Context) (statex.Location, error) {
		return r.inner.Resolve(ctx, placeName)
	})
}

type retryCatalog struct {
	inner  contractx.Catalog
	policy retryx.Policy
}

func (r *retryCatalog) NearbyVendors(ctx context.Context, lat, lon float64, vendorType string, limit int) ([]contractx.Vendor, error) {
	return retryx.Do(ctx, r.policy, func(ctx context.Context) ([]contractx.Vendor, error) {
		return r.inner.NearbyVendors(ctx, lat, lon, vendorType, limit)
	})
}

func (r *retryCatalog) VendorServices(ctx context.Context, vendorID int64, limit, offset int, filter string) ([]contractx.Service, error) {
	return retryx.Do(ctx, r.policy, func(ctx context.Context) ([]contractx.Service, error) {
		return r.inner.VendorServices(ctx, vendorID, limit, offset, filter)
	})
}

type retryNarrator struct {
	inner  contractx.Narrator
	policy retryx.Policy
}

func (r *retryNarrator) Render(ctx context.Context, req contractx.NarrationRequest) (contractx.Narration, error) {
	return retryx.Do(ctx, r.policy, func(ctx context.Context) (contractx.Narration, error) {
		return r.inner.Render(ctx, req)
	})
}
