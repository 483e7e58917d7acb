package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	contractx "github.com/pattadon/foodcourt-agent/agent/contract"
	statex "github.com/pattadon/foodcourt-agent/agent/state"
	retryx "github.com/pattadon/foodcourt-agent/pkg/retryx"
)

type fakeClassifier struct {
	cls   contractx.Classification
	errs  []error
	calls int
}

func (f *fakeClassifier) Classify(ctx context.Context, query, historyText string) (contractx.Classification, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return contractx.Classification{}, err
		}
	}
	return f.cls, nil
}

type fakeGeocoder struct {
	loc   statex.Location
	err   error
	calls int
}

func (f *fakeGeocoder) Resolve(ctx context.Context, placeName string) (statex.Location, error) {
	f.calls++
	if f.err != nil {
		return statex.Location{}, f.err
	}
	return f.loc, nil
}

type fakeCatalog struct {
	vendors  []contractx.Vendor
	services []contractx.Service
}

func (f *fakeCatalog) NearbyVendors(ctx context.Context, lat, lon float64, vendorType string, limit int) ([]contractx.Vendor, error) {
	return f.vendors, nil
}

func (f *fakeCatalog) VendorServices(ctx context.Context, vendorID int64, limit, offset int, filter string) ([]contractx.Service, error) {
	return f.services, nil
}

type fakeNarrator struct {
	narration contractx.Narration
	err       error
	lastReq   contractx.NarrationRequest
	calls     int
}

func (f *fakeNarrator) Render(ctx context.Context, req contractx.NarrationRequest) (contractx.Narration, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return contractx.Narration{}, f.err
	}
	return f.narration, nil
}

func fastPolicy() retryx.Policy {
	return retryx.Policy{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func newTestAssistant(
	t *testing.T,
	store statex.Store,
	classifier contractx.Classifier,
	geocoder contractx.Geocoder,
	catalog contractx.Catalog,
	narrator contractx.Narrator,
) *Assistant {
	t.Helper()
	a, err := New(store, classifier, geocoder, catalog, narrator, fastPolicy())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return a
}

func TestHandleMessageInvalidInput(t *testing.T) {
	t.Parallel()

	a := newTestAssistant(t,
		statex.NewMemoryStore(),
		&fakeClassifier{},
		&fakeGeocoder{},
		&fakeCatalog{},
		&fakeNarrator{},
	)

	_, err := a.HandleMessage(context.Background(), "   ", "hello")
	if !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}

	_, err = a.HandleMessage(context.Background(), "s1", "   ")
	if !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestHandleMessageExploreFullTurn(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	classifier := &fakeClassifier{
		cls: contractx.Classification{
			CorrectedQuery: "restaurants near siam",
			NeedsLocation:  true,
			LocationName:   "Siam",
			QueryType:      "restaurant",
		},
	}
	geocoder := &fakeGeocoder{loc: statex.Location{Latitude: 13.75, Longitude: 100.53, Name: "Siam, Bangkok"}}
	catalog := &fakeCatalog{
		vendors: []contractx.Vendor{{ID: 1, StoreName: "Noodle Bar", Rating: 4.5, DistanceKM: 0.3}},
	}
	narrator := &fakeNarrator{
		narration: contractx.Narration{VoiceText: "Found one place.", RichText: "Noodle Bar is 0.3 km away."},
	}

	a := newTestAssistant(t, store, classifier, geocoder, catalog, narrator)

	reply, err := a.HandleMessage(context.Background(), "s1", "restarants near siam")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if reply.Text != "Noodle Bar is 0.3 km away." {
		t.Fatalf("unexpected reply: %q", reply.Text)
	}
	if reply.Voice != "Found one place." {
		t.Fatalf("unexpected voice: %q", reply.Voice)
	}
	if geocoder.calls != 1 {
		t.Fatalf("expected one geocode call, got %d", geocoder.calls)
	}

	conv, err := store.Load(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !conv.HasLocation() || conv.Location.Name != "Siam, Bangkok" {
		t.Fatalf("expected location persisted, got %+v", conv.Location)
	}
	if len(conv.Messages) != 2 {
		t.Fatalf("expected user+assistant messages, got %d", len(conv.Messages))
	}
	// The corrected query is what gets recorded, not the raw one.
	if conv.Messages[0].Content != "restaurants near siam" {
		t.Fatalf("unexpected recorded user message: %q", conv.Messages[0].Content)
	}
	if _, ok := conv.Entities.FindIDByName(statex.EntityVendor, "Noodle Bar"); !ok {
		t.Fatal("expected vendor registered from the browse")
	}

	if narrator.calls != 1 {
		t.Fatalf("expected one narration, got %d", narrator.calls)
	}
	if _, ok := narrator.lastReq.Data.(contractx.VendorsPayload); !ok {
		t.Fatalf("expected vendors payload narrated, got %T", narrator.lastReq.Data)
	}
}

func TestHandleMessageMissingLocationPrompts(t *testing.T) {
	t.Parallel()

	classifier := &fakeClassifier{
		cls: contractx.Classification{NeedsLocation: true, QueryType: "restaurant"},
	}
	narrator := &fakeNarrator{}

	a := newTestAssistant(t, statex.NewMemoryStore(), classifier, &fakeGeocoder{}, &fakeCatalog{}, narrator)

	reply, err := a.HandleMessage(context.Background(), "s1", "find me food")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if !strings.Contains(reply.Text, "where you are") {
		t.Fatalf("expected location prompt, got %q", reply.Text)
	}
	if narrator.calls != 0 {
		t.Fatal("a location prompt needs no narration")
	}
}

func TestHandleMessageCartTurn(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	conv := statex.NewConversation("s1", time.Now())
	conv.SetLocation(statex.Location{Latitude: 13.75, Longitude: 100.53, Name: "Siam"})
	conv.SetLastShown([]statex.ShownService{
		{ServiceID: 11, VendorID: 1, ServiceName: "Pad Thai", VendorName: "Noodle Bar", Price: 80},
	})
	if err := store.Save(context.Background(), conv); err != nil {
		t.Fatalf("seed save: %v", err)
	}

	classifier := &fakeClassifier{
		cls: contractx.Classification{
			IsCartOperation: true,
			CartAction:      contractx.CartActionAdd,
			ServiceNames:    []string{"pad thai"},
			Quantities:      []int{2},
		},
	}
	narrator := &fakeNarrator{
		narration: contractx.Narration{VoiceText: "Added.", RichText: "Added 2 Pad Thai to your cart."},
	}

	a := newTestAssistant(t, store, classifier, &fakeGeocoder{}, &fakeCatalog{}, narrator)

	reply, err := a.HandleMessage(context.Background(), "s1", "add two pad thai")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if reply.Text != "Added 2 Pad Thai to your cart." {
		t.Fatalf("unexpected reply: %q", reply.Text)
	}

	saved, err := store.Load(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if saved.Cart.Len() != 1 || saved.Cart.Items[0].Quantity != 2 {
		t.Fatalf("unexpected cart: %+v", saved.Cart.Items)
	}
	if got := saved.Cart.Total(); got != 160 {
		t.Fatalf("expected total 160, got %v", got)
	}

	payload, ok := narrator.lastReq.Data.(contractx.CartPayload)
	if !ok {
		t.Fatalf("expected cart payload narrated, got %T", narrator.lastReq.Data)
	}
	if len(payload.Added) != 1 || payload.Added[0] != "Pad Thai" {
		t.Fatalf("unexpected added list: %+v", payload.Added)
	}
}

func TestHandleMessageClassifierFailureDegrades(t *testing.T) {
	t.Parallel()

	classifier := &fakeClassifier{
		errs: []error{
			errors.New("model down"),
			errors.New("model down"),
			errors.New("model down"),
		},
	}

	a := newTestAssistant(t, statex.NewMemoryStore(), classifier, &fakeGeocoder{}, &fakeCatalog{}, &fakeNarrator{})

	// The safe default asks for a location instead of failing the turn.
	reply, err := a.HandleMessage(context.Background(), "s1", "hello there")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if !strings.Contains(reply.Text, "where you are") {
		t.Fatalf("expected safe-default location prompt, got %q", reply.Text)
	}
}

func TestHandleMessageTransientClassifierErrorIsRetried(t *testing.T) {
	t.Parallel()

	classifier := &fakeClassifier{
		errs: []error{
			retryx.Transient(errors.New("rate limited")),
			retryx.Transient(errors.New("rate limited")),
		},
		cls: contractx.Classification{NeedsLocation: true},
	}

	a := newTestAssistant(t, statex.NewMemoryStore(), classifier, &fakeGeocoder{}, &fakeCatalog{}, &fakeNarrator{})

	if _, err := a.HandleMessage(context.Background(), "s1", "hello"); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if classifier.calls != 3 {
		t.Fatalf("expected 2 retries then success, got %d calls", classifier.calls)
	}
}

func TestHandleMessageNarratorFailureUsesFallback(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	conv := statex.NewConversation("s1", time.Now())
	conv.SetLocation(statex.Location{Latitude: 13.75, Longitude: 100.53, Name: "Siam"})
	if err := store.Save(context.Background(), conv); err != nil {
		t.Fatalf("seed save: %v", err)
	}

	classifier := &fakeClassifier{cls: contractx.Classification{QueryType: "restaurant"}}
	catalog := &fakeCatalog{
		vendors: []contractx.Vendor{{ID: 1, StoreName: "Noodle Bar", Rating: 4.5, DistanceKM: 0.3}},
	}
	narrator := &fakeNarrator{err: errors.New("narrator down")}

	a := newTestAssistant(t, store, classifier, &fakeGeocoder{}, catalog, narrator)

	reply, err := a.HandleMessage(context.Background(), "s1", "restaurants nearby")
	if err != nil {
		t.Fatalf("a narrator outage must not fail the turn: %v", err)
	}
	if !strings.Contains(reply.Text, "Noodle Bar") {
		t.Fatalf("fallback must answer from real data, got %q", reply.Text)
	}
}

func TestHandleMessageGeocoderFailureLeavesLocationUnset(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	classifier := &fakeClassifier{
		cls: contractx.Classification{NeedsLocation: true, LocationName: "Atlantis"},
	}
	geocoder := &fakeGeocoder{err: contractx.ErrNotFound}

	a := newTestAssistant(t, store, classifier, geocoder, &fakeCatalog{}, &fakeNarrator{})

	reply, err := a.HandleMessage(context.Background(), "s1", "food near atlantis")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if !strings.Contains(reply.Text, "where you are") {
		t.Fatalf("expected location prompt after failed geocode, got %q", reply.Text)
	}

	conv, err := store.Load(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if conv.HasLocation() {
		t.Fatal("failed geocode must leave location unset")
	}
}

func TestEndSessionDeletesConversation(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	conv := statex.NewConversation("s1", time.Now())
	if err := store.Save(context.Background(), conv); err != nil {
		t.Fatalf("seed save: %v", err)
	}

	a := newTestAssistant(t, store, &fakeClassifier{}, &fakeGeocoder{}, &fakeCatalog{}, &fakeNarrator{})
	if err := a.EndSession(context.Background(), "s1"); err != nil {
		t.Fatalf("EndSession() error = %v", err)
	}
	if _, err := store.Load(context.Background(), "s1"); !errors.Is(err, statex.ErrConversationNotFound) {
		t.Fatalf("expected conversation deleted, got %v", err)
	}
}
