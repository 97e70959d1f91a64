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
	"slices"

	"github.com/dimkr/apfeed/ap"
	"github.com/dimkr/apfeed/feed"
)

// State is the state of a [Relation].
type State struct {
	// URL is the collection URL.
	URL   string
	Items []ap.Item

	// Page is the last page fetched or being fetched, starting at 1.
	Page       int
	HasNext    bool
	TotalItems int64
	Loading    bool
}

func (s State) clone() State {
	s.Items = slices.Clone(s.Items)
	return s
}

func reset() State {
	return State{Page: 1}
}

func begin(s State, url string, add bool) State {
	if add {
		s.Page++
	} else {
		s.Page = 1
	}
	s.URL = url
	s.Loading = true
	return s
}

func applyPage(s State, p *ap.CollectionPage) State {
	s.HasNext = p.HasNext()
	if p.TotalItems != nil {
		s.TotalItems = *p.TotalItems
	}
	return s
}

func merge(s State, items []ap.Item, add bool) State {
	s.Items = feed.Merge(s.Items, items, add)
	return s
}

func finish(s State) State {
	s.Loading = false
	return s
}
