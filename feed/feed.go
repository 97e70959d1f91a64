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

// Package feed turns pages of an inbox into a growing list of resolved items.
package feed

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/dimkr/apfeed/ap"
	"github.com/dimkr/apfeed/cfg"
	"github.com/dimkr/apfeed/logcontext"
	"github.com/dimkr/apfeed/notify"
)

const emptyFilterWarning = "Filter for this actor not possible."

var (
	// ErrLoading is returned when the next page is requested while a page is being loaded.
	ErrLoading = errors.New("already loading")

	// ErrSuperseded is returned when a load is discarded because the feed was reset or reloaded.
	ErrSuperseded = errors.New("superseded by a newer request")

	ErrNoSubject   = errors.New("no feed is loaded")
	ErrEmptyFilter = errors.New("empty filter")
)

// PageFetcher fetches a page of a user's inbox.
type PageFetcher interface {
	FetchPage(ctx context.Context, user string, page int, filter string) (*ap.CollectionPage, error)
}

// Feed is a paginated feed of items.
//
// Each load fetches a page, resolves references, normalizes attachments and merges the items into the
// feed. A load started before the feed was reloaded, filtered or reset leaves the feed untouched.
type Feed struct {
	Config   *cfg.Config
	fetcher  PageFetcher
	resolver Resolver
	notifier notify.Notifier

	lock       sync.Mutex
	state      State
	subject    string
	generation uint64
}

type cycle struct {
	Generation uint64
	Subject    string
	Filter     string
	Page       int
	Add        bool
}

// New returns a new [Feed].
func New(cfg *cfg.Config, fetcher PageFetcher, resolver Resolver, notifier notify.Notifier) *Feed {
	return &Feed{
		Config:   cfg,
		fetcher:  fetcher,
		resolver: resolver,
		notifier: notifier,
		state:    reset(State{}),
	}
}

// startLocked must be called with f.lock held.
func (f *Feed) startLocked(add bool) cycle {
	f.state = begin(f.state, add)
	return cycle{
		Generation: f.generation,
		Subject:    f.subject,
		Filter:     f.state.Filter,
		Page:       f.state.Page,
		Add:        add,
	}
}

// LoadFirst clears the feed and loads the first page of a user's inbox.
func (f *Feed) LoadFirst(ctx context.Context, subject string) error {
	f.lock.Lock()
	f.generation++
	f.subject = subject
	f.state = reset(f.state)
	c := f.startLocked(false)
	f.lock.Unlock()

	return f.load(ctx, c)
}

// LoadNext loads the next page and appends its items to the feed.
func (f *Feed) LoadNext(ctx context.Context) error {
	f.lock.Lock()

	if f.state.Loading {
		f.lock.Unlock()
		return ErrLoading
	}

	if f.subject == "" {
		f.lock.Unlock()
		return ErrNoSubject
	}

	c := f.startLocked(true)
	f.lock.Unlock()

	return f.load(ctx, c)
}

// SetFilter restricts the feed to items attributed to an actor and reloads it. If no feed is loaded, the
// filter applies to the next call to [Feed.LoadFirst].
func (f *Feed) SetFilter(ctx context.Context, actor string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		f.notifier.Warning(ctx, emptyFilterWarning)
		return ErrEmptyFilter
	}

	f.lock.Lock()

	if f.subject == "" {
		f.state.Filter = actor
		f.lock.Unlock()
		return nil
	}

	f.generation++
	f.state = withFilter(f.state, actor)
	c := f.startLocked(false)
	f.lock.Unlock()

	return f.load(ctx, c)
}

// ClearFilter removes the filter and reloads the feed.
func (f *Feed) ClearFilter(ctx context.Context) error {
	f.lock.Lock()

	if f.subject == "" {
		f.state.Filter = ""
		f.lock.Unlock()
		return nil
	}

	f.generation++
	f.state = withFilter(f.state, "")
	c := f.startLocked(false)
	f.lock.Unlock()

	return f.load(ctx, c)
}

// Reset clears the feed and forgets its subject and filter.
func (f *Feed) Reset() {
	f.lock.Lock()
	f.generation++
	f.subject = ""
	f.state = finish(reset(State{}))
	f.lock.Unlock()
}

// State returns a copy of the feed state.
func (f *Feed) State() State {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.state.clone()
}

// Subject returns the user whose inbox is loaded.
func (f *Feed) Subject() string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.subject
}

// Posts returns the posts in the feed.
func (f *Feed) Posts() []*ap.Object {
	return Posts(f.State().Items)
}

// update applies a state transition if c is still current.
func (f *Feed) update(c cycle, transition func(State) State) bool {
	f.lock.Lock()
	defer f.lock.Unlock()

	if f.generation != c.Generation {
		return false
	}

	f.state = transition(f.state)
	return true
}

func (f *Feed) load(ctx context.Context, c cycle) error {
	ctx = logcontext.NewCycle(ctx, "subject", c.Subject, "page", c.Page)

	slog.DebugContext(ctx, "Loading page", "filter", c.Filter, "add", c.Add)

	p, err := f.fetcher.FetchPage(ctx, c.Subject, c.Page, c.Filter)
	if err != nil {
		if !f.update(c, finish) {
			slog.DebugContext(ctx, "Ignoring failure of superseded load", "error", err)
			return ErrSuperseded
		}

		slog.WarnContext(ctx, "Failed to load page", "error", err)
		f.notifier.Error(ctx, err.Error())
		return err
	}

	if !f.update(c, func(s State) State { return applyPage(s, p) }) {
		slog.DebugContext(ctx, "Discarding page of superseded load")
		return ErrSuperseded
	}

	items := Resolve(ctx, f.resolver, p.Entries(), f.Config.MaxResolverRequests)

	for i := range items {
		items[i] = Normalize(items[i])
	}

	if c.Filter != "" {
		filtered := items[:0]
		for _, item := range items {
			if attributedTo(item, c.Filter) {
				filtered = append(filtered, item)
			} else {
				slog.DebugContext(ctx, "Dropping item by another actor", "id", item.ID())
			}
		}
		items = filtered
	}

	if !f.update(c, func(s State) State { return finish(merge(s, items, c.Add)) }) {
		slog.DebugContext(ctx, "Discarding items of superseded load", "count", len(items))
		return ErrSuperseded
	}

	slog.DebugContext(ctx, "Loaded page", "count", len(items), "has_next", p.HasNext())
	return nil
}
