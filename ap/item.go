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
	"bytes"
	"encoding/json"
	"fmt"
)

// ItemKind discriminates the values an [Item] can hold.
type ItemKind int

const (
	// NoItem is the zero [Item], decoded from null or an empty string.
	NoItem ItemKind = iota
	ObjectItem
	LinkItem
	ReferenceItem
)

func (k ItemKind) String() string {
	switch k {
	case ObjectItem:
		return "object"
	case LinkItem:
		return "link"
	case ReferenceItem:
		return "reference"
	default:
		return "none"
	}
}

// Item is an ActivityStreams value that is either an embedded [Object], a [Link] or a bare reference
// (an ID) to an object that must be fetched separately.
type Item struct {
	Kind   ItemKind
	Object *Object
	Link   *Link
	Ref    string
}

// Reference returns an [Item] that refers to id.
func Reference(id string) Item {
	if id == "" {
		return Item{}
	}
	return Item{Kind: ReferenceItem, Ref: id}
}

// Embed returns an [Item] that holds o.
func Embed(o *Object) Item {
	if o == nil {
		return Item{}
	}
	return Item{Kind: ObjectItem, Object: o}
}

// LinkTo returns an [Item] that holds l.
func LinkTo(l *Link) Item {
	if l == nil {
		return Item{}
	}
	return Item{Kind: LinkItem, Link: l}
}

func (i Item) IsZero() bool {
	return i.Kind == NoItem
}

// IsReference determines whether the item is a bare reference.
func (i Item) IsReference() bool {
	return i.Kind == ReferenceItem
}

// ID returns the ID of the referenced or embedded object, or the target of a link.
func (i Item) ID() string {
	switch i.Kind {
	case ReferenceItem:
		return i.Ref
	case ObjectItem:
		return i.Object.ID
	case LinkItem:
		return i.Link.Href
	default:
		return ""
	}
}

func (i *Item) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*i = Item{}
		return nil
	}

	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*i = Reference(s)
		return nil

	case '{':
		var probe struct {
			Type Array[string] `json:"type"`
		}
		if err := json.Unmarshal(b, &probe); err != nil {
			return fmt.Errorf("invalid item: %w", err)
		}

		if len(probe.Type) > 0 && LinkType(probe.Type[0]).IsLink() {
			var l Link
			if err := json.Unmarshal(b, &l); err != nil {
				return err
			}
			*i = LinkTo(&l)
			return nil
		}

		var o Object
		if err := json.Unmarshal(b, &o); err != nil {
			return err
		}
		*i = Embed(&o)
		return nil

	default:
		return fmt.Errorf("invalid item: %s", string(b))
	}
}

func (i Item) MarshalJSON() ([]byte, error) {
	switch i.Kind {
	case ReferenceItem:
		return json.Marshal(i.Ref)
	case ObjectItem:
		return json.Marshal(i.Object)
	case LinkItem:
		return json.Marshal(i.Link)
	default:
		return []byte("null"), nil
	}
}
