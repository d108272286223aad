package runtcp

import (
	"context"
)

// StaticFetcher is an implementation of the Fetcher that maintains a
// static mapping of names to ConnHandler instances. This implementation
// is a highly simplified form for the purposes of reducing risk in
// operations. Runtimes that leverage this implementation do not need to
// perform any orchestration of external systems as all handling of
// connections happens within the process and shares the runtime's
// resources. There is also no "live update" feature which means there
// are less moving parts that might fail when starting the service.
//
// The trade-off is that updates to, additions of, and removals of
// handlers must be accomplished by generating a new build and
// redeploying the runtime.
type StaticFetcher struct {
	// Handlers is the underlying static map of handler names to
	// connection handlers. The keys of the map will be used as the
	// name of the handler.
	Handlers map[string]ConnHandler
}

// Fetch resolves the name using the internal mapping.
func (f *StaticFetcher) Fetch(ctx context.Context, name string) (ConnHandler, error) {
	h, ok := f.Handlers[name]
	if !ok {
		return nil, NotFoundError{ID: name}
	}
	return h, nil
}

// MockingFetcher sources original handlers from another Fetcher and
// mocks out their behavior. Any handler that resolves is replaced with
// a DiscardHandler so connections are accepted and drained without any
// of the real protocol running. This enables testing of deployment and
// connectivity concerns without exercising handler logic.
type MockingFetcher struct {
	Fetcher Fetcher
}

// Fetch calls the underlying Fetcher and mocks the result.
func (f *MockingFetcher) Fetch(ctx context.Context, name string) (ConnHandler, error) {
	if _, err := f.Fetcher.Fetch(ctx, name); err != nil {
		return nil, err
	}
	return DiscardHandler{}, nil
}
