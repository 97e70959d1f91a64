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

package ap

import (
	"encoding/json"
	"log/slog"
)

type CollectionType string

const (
	Collection        CollectionType = "Collection"
	OrderedCollection CollectionType = "OrderedCollection"
	UnorderedPage     CollectionType = "CollectionPage"
	OrderedPage       CollectionType = "OrderedCollectionPage"
)

// CollectionPage represents one page of an ActivityPub collection.
type CollectionPage struct {
	Context      any            `json:"@context,omitempty"`
	ID           string         `json:"id,omitempty"`
	Type         CollectionType `json:"type"`
	PartOf       string         `json:"partOf,omitempty"`
	Next         *Item          `json:"next,omitempty"`
	Prev         *Item          `json:"prev,omitempty"`
	TotalItems   *int64         `json:"totalItems,omitempty"`
	OrderedItems Array[Item]    `json:"orderedItems,omitzero"`
	Items        Array[Item]    `json:"items,omitzero"`
}

// HasNext determines whether the page points to a next page.
func (p *CollectionPage) HasNext() bool {
	return p.Next != nil && p.Next.ID() != ""
}

// HasPrev determines whether the page points to a previous page.
func (p *CollectionPage) HasPrev() bool {
	return p.Prev != nil && p.Prev.ID() != ""
}

// Entries returns the items of the page, preferring orderedItems.
func (p *CollectionPage) Entries() []Item {
	if len(p.OrderedItems) > 0 {
		return p.OrderedItems
	}
	return p.Items
}

// Total returns totalItems, or zero if missing.
func (p *CollectionPage) Total() int64 {
	if p.TotalItems == nil {
		return 0
	}
	return *p.TotalItems
}

func (p *CollectionPage) UnmarshalJSON(b []byte) error {
	type page CollectionPage
	var tmp struct {
		page
		OrderedItems Array[json.RawMessage] `json:"orderedItems"`
		Items        Array[json.RawMessage] `json:"items"`
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}

	*p = CollectionPage(tmp.page)
	p.OrderedItems = decodeEntries(tmp.OrderedItems)
	p.Items = decodeEntries(tmp.Items)
	return nil
}

// decodeEntries decodes each entry separately and skips entries that cannot be decoded.
func decodeEntries(raw []json.RawMessage) Array[Item] {
	if raw == nil {
		return nil
	}

	items := make(Array[Item], 0, len(raw))
	for _, entry := range raw {
		var item Item
		if err := json.Unmarshal(entry, &item); err != nil {
			slog.Warn("Skipping invalid collection item", "error", err)
			continue
		}
		items = append(items, item)
	}

	return items
}
