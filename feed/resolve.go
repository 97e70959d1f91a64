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

package feed

import (
	"context"
	"log/slog"

	"github.com/dimkr/apfeed/ap"
	"golang.org/x/sync/errgroup"
)

// Resolver retrieves objects by their ID.
type Resolver interface {
	ResolveID(ctx context.Context, id string) (*ap.Object, error)
}

// Map calls f for each item concurrently, with at most limit calls in flight, and waits for all calls to
// return. It returns the items f keeps, in the order of items.
func Map(ctx context.Context, items []ap.Item, limit int, f func(context.Context, ap.Item) (ap.Item, bool)) []ap.Item {
	type result struct {
		Item ap.Item
		OK   bool
	}

	results := make([]result, len(items))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, item := range items {
		g.Go(func() error {
			results[i].Item, results[i].OK = f(ctx, item)
			return nil
		})
	}

	g.Wait()

	kept := make([]ap.Item, 0, len(items))
	for _, r := range results {
		if r.OK {
			kept = append(kept, r.Item)
		}
	}

	return kept
}

// Resolve replaces bare references in items with the objects they point to.
//
// A top-level reference is replaced by the object. For an object, a reference in attributedTo (or, for
// activities, in actor) is replaced by the object it points to, in a copy of the object. Items that
// cannot be resolved are omitted.
func Resolve(ctx context.Context, resolver Resolver, items []ap.Item, limit int) []ap.Item {
	return Map(ctx, items, limit, func(ctx context.Context, item ap.Item) (ap.Item, bool) {
		return resolveItem(ctx, resolver, item)
	})
}

func resolveItem(ctx context.Context, resolver Resolver, item ap.Item) (ap.Item, bool) {
	switch item.Kind {
	case ap.LinkItem:
		return item, true

	case ap.ReferenceItem:
		o, err := resolver.ResolveID(ctx, item.Ref)
		if err != nil {
			slog.WarnContext(ctx, "Dropping unresolvable item", "id", item.Ref, "error", err)
			return ap.Item{}, false
		}

		if !resolveFields(ctx, resolver, o) {
			return ap.Item{}, false
		}

		return ap.Embed(o), true

	case ap.ObjectItem:
		o := *item.Object
		if !resolveFields(ctx, resolver, &o) {
			return ap.Item{}, false
		}

		return ap.Embed(&o), true

	default:
		return ap.Item{}, false
	}
}

func resolveField(ctx context.Context, resolver Resolver, o *ap.Object, name string, field **ap.Item) bool {
	if *field == nil || !(*field).IsReference() {
		return true
	}

	ref := (*field).Ref
	resolved, err := resolver.ResolveID(ctx, ref)
	if err != nil {
		slog.WarnContext(ctx, "Dropping item with unresolvable "+name, "id", o.ID, name, ref, "error", err)
		return false
	}

	embedded := ap.Embed(resolved)
	*field = &embedded
	return true
}

// resolveFields modifies o, which must not be shared.
func resolveFields(ctx context.Context, resolver Resolver, o *ap.Object) bool {
	if o.Type.IsActivity() && !resolveField(ctx, resolver, o, "actor", &o.Actor) {
		return false
	}

	return resolveField(ctx, resolver, o, "attributedTo", &o.AttributedTo)
}
