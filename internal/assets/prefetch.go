package assets

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds parallel fetches when no limit is given.
const DefaultConcurrency = 4

// Set is an immutable URI to asset lookup built by Prefetch.
type Set struct {
	m map[string]*Asset
}

// Get returns the asset fetched for uri.
func (s Set) Get(uri string) (*Asset, bool) {
	a, ok := s.m[uri]
	return a, ok
}

// Len returns the number of resolved assets.
func (s Set) Len() int { return len(s.m) }

// NewSet builds a Set from already resolved assets, keyed by Asset.URI.
func NewSet(list ...*Asset) Set {
	m := make(map[string]*Asset, len(list))
	for _, a := range list {
		if a != nil {
			m[a.URI] = a
		}
	}
	return Set{m: m}
}

// Prefetch resolves every distinct non-empty URI with at most limit
// fetches in flight. Failed URIs are simply absent from the result.
func Prefetch(ctx context.Context, f Fetcher, uris []string, limit int) Set {
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	seen := make(map[string]struct{}, len(uris))
	var (
		mu  sync.Mutex
		out = make(map[string]*Asset, len(uris))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, uri := range uris {
		if uri == "" {
			continue
		}
		if _, dup := seen[uri]; dup {
			continue
		}
		seen[uri] = struct{}{}

		g.Go(func() error {
			a, ok := f.Fetch(gctx, uri)
			if !ok {
				return nil
			}
			mu.Lock()
			out[uri] = a
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // workers never return errors
	return Set{m: out}
}
