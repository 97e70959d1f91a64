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

package profile

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dimkr/apfeed/ap"
	"github.com/dimkr/apfeed/feed"
	"github.com/dimkr/apfeed/logcontext"
)

// Relation is a paginated list of actors, like the followers of an actor.
type Relation struct {
	name       string
	lock       sync.Mutex
	state      State
	generation uint64
}

type cycle struct {
	Generation uint64
	URL        string
	Page       int
	Add        bool
}

func newRelation(name string) *Relation {
	return &Relation{name: name, state: reset()}
}

// State returns a copy of the relation state.
func (r *Relation) State() State {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.state.clone()
}

func (r *Relation) reset() {
	r.lock.Lock()
	r.generation++
	r.state = reset()
	r.lock.Unlock()
}

// start begins loading a page. If add is true and url is empty, the next page of the last URL is loaded.
func (r *Relation) start(url string, add bool) (cycle, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if add && r.state.Loading {
		return cycle{}, ErrLoading
	}

	if add && url == "" {
		url = r.state.URL
	}

	if url == "" {
		return cycle{}, ErrNoCollection
	}

	if !add {
		r.generation++
	}

	r.state = begin(r.state, url, add)

	return cycle{
		Generation: r.generation,
		URL:        url,
		Page:       r.state.Page,
		Add:        add,
	}, nil
}

func (r *Relation) update(c cycle, transition func(State) State) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.generation != c.Generation {
		return false
	}

	r.state = transition(r.state)
	return true
}

func (p *Profile) fetch(ctx context.Context, r *Relation, url string, add bool) error {
	c, err := r.start(url, add)
	if err != nil {
		return err
	}

	return p.run(ctx, r, c)
}

func (p *Profile) run(ctx context.Context, r *Relation, c cycle) error {
	ctx = logcontext.NewCycle(ctx, "relation", r.name, "url", c.URL, "page", c.Page)

	slog.DebugContext(ctx, "Loading page", "add", c.Add)

	page, err := p.fetcher.FetchCollection(ctx, c.URL, c.Page)
	if err != nil {
		if !r.update(c, finish) {
			slog.DebugContext(ctx, "Ignoring failure of superseded load", "error", err)
			return ErrSuperseded
		}

		slog.WarnContext(ctx, "Failed to load page", "error", err)
		p.notifier.Error(ctx, err.Error())
		return err
	}

	if !r.update(c, func(s State) State { return applyPage(s, page) }) {
		slog.DebugContext(ctx, "Discarding page of superseded load")
		return ErrSuperseded
	}

	actors := feed.Map(ctx, page.Entries(), p.Config.MaxResolverRequests, p.resolveActor)

	if !r.update(c, func(s State) State { return finish(merge(s, actors, c.Add)) }) {
		slog.DebugContext(ctx, "Discarding actors of superseded load", "count", len(actors))
		return ErrSuperseded
	}

	slog.DebugContext(ctx, "Loaded page", "count", len(actors), "has_next", page.HasNext())
	return nil
}

// resolveActor fetches an actor if item is a bare ID.
func (p *Profile) resolveActor(ctx context.Context, item ap.Item) (ap.Item, bool) {
	switch item.Kind {
	case ap.ObjectItem:
		return item, true

	case ap.ReferenceItem:
		o, err := p.resolver.ResolveID(ctx, item.Ref)
		if err != nil {
			slog.WarnContext(ctx, "Dropping unresolvable actor", "id", item.Ref, "error", err)
			return ap.Item{}, false
		}
		return ap.Embed(o), true

	default:
		return ap.Item{}, false
	}
}
