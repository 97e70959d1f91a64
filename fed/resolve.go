/*
Copyright 2026 Dima Krasner

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package fed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/dimkr/apfeed/ap"
	"github.com/dimkr/apfeed/cfg"
	"golang.org/x/sync/singleflight"
)

// Fetcher fetches an object by its ID.
type Fetcher interface {
	FetchEntity(ctx context.Context, id string) (*ap.Object, error)
}

// Resolver retrieves objects given their ID.
// Objects are cached, refreshed when older than [cfg.Config.ResolverCacheTTL] and deleted if gone from
// the remote server. Concurrent requests for the same ID share a single fetch.
type Resolver struct {
	BlockedDomains *BlockList
	Config         *cfg.Config
	fetcher        Fetcher
	cache          *Cache
	group          singleflight.Group
}

// NewResolver returns a new [Resolver]. cache and blockedDomains may be nil.
func NewResolver(blockedDomains *BlockList, cfg *cfg.Config, fetcher Fetcher, cache *Cache) *Resolver {
	return &Resolver{
		BlockedDomains: blockedDomains,
		Config:         cfg,
		fetcher:        fetcher,
		cache:          cache,
	}
}

// ResolveID retrieves an object by its ID. There are no retries.
func (r *Resolver) ResolveID(ctx context.Context, id string) (*ap.Object, error) {
	u, err := parseID(id)
	if err != nil {
		return nil, err
	}

	if r.BlockedDomains != nil && r.BlockedDomains.Contains(u.Hostname()) {
		return nil, fmt.Errorf("cannot resolve %s: %w", id, ErrBlockedDomain)
	}

	// the shared request outlives callers that give up
	ch := r.group.DoChan(id, func() (any, error) {
		return r.resolve(context.WithoutCancel(ctx), u, id)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if res.Err != nil {
		return nil, res.Err
	}

	// each caller gets its own copy
	o := *res.Val.(*ap.Object)
	return &o, nil
}

func (r *Resolver) resolve(ctx context.Context, u *url.URL, id string) (*ap.Object, error) {
	slog.DebugContext(ctx, "Resolving object", "id", id)

	var cached *ap.Object
	if r.cache != nil {
		var updated time.Time
		var err error
		cached, updated, err = r.cache.Get(ctx, id)
		if err != nil {
			slog.WarnContext(ctx, "Failed to read cache", "id", id, "error", err)
		} else if cached != nil && time.Since(updated) < r.Config.ResolverCacheTTL {
			slog.DebugContext(ctx, "Resolved object using cache", "id", id)
			return cached, nil
		} else if cached != nil {
			slog.InfoContext(ctx, "Updating old cache entry", "id", id)
		}
	}

	o, err := r.fetcher.FetchEntity(ctx, id)
	if err != nil && errors.Is(err, ErrNotFound) {
		if cached != nil {
			slog.WarnContext(ctx, "Object is gone, deleting cache entry", "id", id)
			if err := r.cache.Delete(ctx, id); err != nil {
				slog.WarnContext(ctx, "Failed to delete cache entry", "id", id, "error", err)
			}
		}
		return nil, err
	} else if err != nil && cached != nil {
		slog.WarnContext(ctx, "Using old cache entry", "id", id, "error", err)
		return cached, nil
	} else if err != nil {
		return nil, err
	}

	if o.ID == "" {
		return nil, fmt.Errorf("%s has no ID: %w", id, ErrInvalidID)
	}

	if fetched, err := url.Parse(o.ID); err != nil || !sameHost(fetched.Host, u.Host) {
		return nil, fmt.Errorf("%s does not match %s: %w", o.ID, id, ErrInvalidHost)
	}

	if r.cache != nil {
		if err := r.cache.Store(ctx, id, o); err != nil {
			slog.WarnContext(ctx, "Failed to cache object", "id", id, "error", err)
		}
	}

	return o, nil
}

func sameHost(a, b string) bool {
	return strings.EqualFold(a, b)
}
