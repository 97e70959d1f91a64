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
	"slices"

	"github.com/dimkr/apfeed/ap"
)

// State is the state of a [Feed].
type State struct {
	// Items are the items fetched so far, in display order.
	Items []ap.Item

	// Page is the last page fetched or being fetched.
	Page    int
	HasNext bool
	HasPrev bool

	// Filter is the ID of an actor, if the feed is restricted to items attributed to this actor.
	Filter string

	// Loading is true while a page is being fetched.
	Loading    bool
	TotalItems int64
	PartOf     string
}

func (s State) clone() State {
	s.Items = slices.Clone(s.Items)
	return s
}

func reset(s State) State {
	return State{
		HasNext: true,
		Filter:  s.Filter,
		Loading: s.Loading,
	}
}

func withFilter(s State, filter string) State {
	s = reset(s)
	s.Filter = filter
	return s
}

func begin(s State, next bool) State {
	if next {
		s.Page++
	}
	s.Loading = true
	return s
}

func applyPage(s State, p *ap.CollectionPage) State {
	s.HasNext = p.HasNext()
	s.HasPrev = p.HasPrev()
	if p.TotalItems != nil {
		s.TotalItems = *p.TotalItems
	}
	if p.PartOf != "" {
		s.PartOf = p.PartOf
	}
	return s
}

func merge(s State, items []ap.Item, add bool) State {
	s.Items = Merge(s.Items, items, add)
	return s
}

// Merge appends items to existing or replaces them, skipping items with an ID that appears earlier.
func Merge(existing, items []ap.Item, add bool) []ap.Item {
	var merged []ap.Item
	seen := map[string]struct{}{}

	if add {
		merged = make([]ap.Item, 0, len(existing)+len(items))
		for _, item := range existing {
			merged = append(merged, item)
			if id := item.ID(); id != "" {
				seen[id] = struct{}{}
			}
		}
	} else {
		merged = make([]ap.Item, 0, len(items))
	}

	for _, item := range items {
		if id := item.ID(); id != "" {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
		}
		merged = append(merged, item)
	}

	return merged
}

func finish(s State) State {
	s.Loading = false
	return s
}
