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

// Package profile loads the followers and following lists of an actor.
package profile

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/dimkr/apfeed/ap"
	"github.com/dimkr/apfeed/cfg"
	"github.com/dimkr/apfeed/feed"
	"github.com/dimkr/apfeed/notify"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrLoading is returned when the next page is requested while a page is being loaded.
	ErrLoading = errors.New("already loading")

	// ErrSuperseded is returned when a load is discarded because the profile was reset or another
	// lookup started.
	ErrSuperseded = errors.New("superseded by a newer request")

	ErrNoCollection = errors.New("no collection")
	ErrNotActor     = errors.New("not an actor")
)

// Fetcher fetches pages of collections and finds actors by handle.
type Fetcher interface {
	FetchCollection(ctx context.Context, collection string, page int) (*ap.CollectionPage, error)
	Webfinger(ctx context.Context, handle string) (string, error)
}

// Profile is an actor being inspected, with its followers and following.
//
// Followers and following are loaded independently: each has its own cursor and loading flag.
type Profile struct {
	Config   *cfg.Config
	fetcher  Fetcher
	resolver feed.Resolver
	notifier notify.Notifier

	lock       sync.Mutex
	subject    *ap.Object
	query      string
	loading    bool
	generation uint64

	followers *Relation
	following *Relation
}

// New returns a new [Profile].
func New(cfg *cfg.Config, fetcher Fetcher, resolver feed.Resolver, notifier notify.Notifier) *Profile {
	return &Profile{
		Config:    cfg,
		fetcher:   fetcher,
		resolver:  resolver,
		notifier:  notifier,
		followers: newRelation("followers"),
		following: newRelation("following"),
	}
}

// FetchFollowers loads the first page of followers if add is false, or appends the next page if add is
// true.
func (p *Profile) FetchFollowers(ctx context.Context, url string, add bool) error {
	return p.fetch(ctx, p.followers, url, add)
}

// FetchFollowing loads the first page of following if add is false, or appends the next page if add is
// true.
func (p *Profile) FetchFollowing(ctx context.Context, url string, add bool) error {
	return p.fetch(ctx, p.following, url, add)
}

// resetLocked must be called with p.lock held.
func (p *Profile) resetLocked() uint64 {
	p.generation++
	p.subject = nil
	p.loading = false
	p.followers.reset()
	p.following.reset()
	return p.generation
}

// Reset forgets the subject, the query and both relations.
func (p *Profile) Reset() {
	p.lock.Lock()
	p.resetLocked()
	p.query = ""
	p.lock.Unlock()
}

// Query forgets the subject and both relations, and records a new query.
func (p *Profile) Query(q string) {
	p.lock.Lock()
	p.resetLocked()
	p.query = q
	p.lock.Unlock()
}

// Find looks up an actor by a handle like @alice@example.com, then loads the first page of its followers
// and following.
func (p *Profile) Find(ctx context.Context, handle string) error {
	handle = strings.TrimSpace(handle)

	p.lock.Lock()
	gen := p.resetLocked()
	p.query = handle
	p.loading = true
	p.lock.Unlock()

	slog.InfoContext(ctx, "Looking up actor", "handle", handle)

	id, err := p.fetcher.Webfinger(ctx, handle)
	if err != nil {
		return p.lookupFailed(ctx, gen, err)
	}

	actor, err := p.resolver.ResolveID(ctx, id)
	if err != nil {
		return p.lookupFailed(ctx, gen, err)
	}

	if !actor.Type.IsActor() {
		return p.lookupFailed(ctx, gen, ErrNotActor)
	}

	return p.load(ctx, gen, actor)
}

// Inspect loads the first page of the followers and following of a known actor.
func (p *Profile) Inspect(ctx context.Context, actor *ap.Object) error {
	p.lock.Lock()
	gen := p.resetLocked()
	p.loading = true
	p.lock.Unlock()

	return p.load(ctx, gen, actor)
}

func (p *Profile) lookupFailed(ctx context.Context, gen uint64, err error) error {
	p.lock.Lock()
	if p.generation != gen {
		p.lock.Unlock()
		return ErrSuperseded
	}
	p.loading = false
	p.lock.Unlock()

	slog.WarnContext(ctx, "Failed to look up actor", "error", err)
	p.notifier.Error(ctx, err.Error())
	return err
}

func (p *Profile) load(ctx context.Context, gen uint64, actor *ap.Object) error {
	p.lock.Lock()

	if p.generation != gen {
		p.lock.Unlock()
		return ErrSuperseded
	}

	subject := *actor
	p.subject = &subject

	// both cycles start before p.lock is released, so a concurrent Reset supersedes them
	type start struct {
		Relation *Relation
		Cycle    cycle
	}
	var starts []start
	for _, rel := range []struct {
		Relation *Relation
		URL      string
	}{
		{p.followers, actor.Followers},
		{p.following, actor.Following},
	} {
		if rel.URL == "" {
			continue
		}

		c, err := rel.Relation.start(rel.URL, false)
		if err != nil {
			p.lock.Unlock()
			return err
		}

		starts = append(starts, start{rel.Relation, c})
	}

	p.lock.Unlock()

	var g errgroup.Group
	for _, s := range starts {
		g.Go(func() error {
			return p.run(ctx, s.Relation, s.Cycle)
		})
	}

	err := g.Wait()

	p.lock.Lock()
	if p.generation == gen {
		p.loading = false
	}
	p.lock.Unlock()

	return err
}

// Subject returns a copy of the actor being inspected, or nil.
func (p *Profile) Subject() *ap.Object {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.subject == nil {
		return nil
	}

	subject := *p.subject
	return &subject
}

// LastQuery returns the last query.
func (p *Profile) LastQuery() string {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.query
}

// Loading determines whether an actor is being looked up.
func (p *Profile) Loading() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.loading
}

// Followers returns a copy of the followers state.
func (p *Profile) Followers() State {
	return p.followers.State()
}

// Following returns a copy of the following state.
func (p *Profile) Following() State {
	return p.following.State()
}
