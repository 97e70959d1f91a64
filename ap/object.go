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
	"fmt"
	"time"
)

type ObjectType string

// UnmarshalJSON accepts a type or a list of types, and keeps the first.
func (t *ObjectType) UnmarshalJSON(b []byte) error {
	var types Array[string]
	if err := json.Unmarshal(b, &types); err != nil {
		return fmt.Errorf("invalid type: %w", err)
	}

	*t = ""
	if first, ok := types.First(); ok {
		*t = ObjectType(first)
	}

	return nil
}

const (
	Note      ObjectType = "Note"
	Page      ObjectType = "Page"
	Article   ObjectType = "Article"
	Question  ObjectType = "Question"
	Image     ObjectType = "Image"
	Video     ObjectType = "Video"
	Audio     ObjectType = "Audio"
	Document  ObjectType = "Document"
	Event     ObjectType = "Event"
	Tombstone ObjectType = "Tombstone"
)

var postTypes = map[ObjectType]struct{}{
	Note:     {},
	Page:     {},
	Article:  {},
	Question: {},
	Image:    {},
	Video:    {},
	Audio:    {},
	Document: {},
	Event:    {},
}

// IsPost determines whether objects of this type are displayed as posts.
func (t ObjectType) IsPost() bool {
	_, ok := postTypes[t]
	return ok
}

// Object represents ActivityPub objects, activities and actors.
//
// Properties that may hold an embedded object or a bare reference are represented by [Item].
type Object struct {
	Context      any         `json:"@context,omitempty"`
	ID           string      `json:"id,omitempty"`
	Type         ObjectType  `json:"type"`
	AttributedTo *Item       `json:"attributedTo,omitempty"`
	InReplyTo    string      `json:"inReplyTo,omitempty"`
	Name         string      `json:"name,omitempty"`
	Summary      string      `json:"summary,omitempty"`
	Content      string      `json:"content,omitempty"`
	Sensitive    bool        `json:"sensitive,omitempty"`
	Published    Time        `json:"published,omitzero"`
	Updated      Time        `json:"updated,omitzero"`
	URL          Array[Item] `json:"url,omitzero"`
	Href         string      `json:"href,omitempty"`
	MediaType    string      `json:"mediaType,omitempty"`
	Width        int         `json:"width,omitempty"`
	Height       int         `json:"height,omitempty"`
	Attachment   Array[Item] `json:"attachment,omitzero"`

	// activities
	Actor  *Item `json:"actor,omitempty"`
	Object *Item `json:"object,omitempty"`

	// actors
	PreferredUsername string      `json:"preferredUsername,omitempty"`
	Inbox             string      `json:"inbox,omitempty"`
	Outbox            string      `json:"outbox,omitempty"`
	Followers         string      `json:"followers,omitempty"`
	Following         string      `json:"following,omitempty"`
	Icon              Array[Item] `json:"icon,omitzero"`
}

// Inner returns the object wrapped by an activity, if it's embedded.
func (o *Object) Inner() *Object {
	if o.Object == nil || o.Object.Kind != ObjectItem {
		return nil
	}
	return o.Object.Object
}

// Author returns the ID of the actor that performed an activity or the author of an object.
func (o *Object) Author() string {
	if o.Type.IsActivity() && o.Actor != nil && o.Actor.Kind != NoItem {
		return o.Actor.ID()
	}

	if o.AttributedTo != nil {
		return o.AttributedTo.ID()
	}

	return ""
}

// Attachments returns the displayable attachments of an object.
// Entries that are not links are skipped: they must be normalized first.
func (o *Object) Attachments() []Attachment {
	attachments := make([]Attachment, 0, len(o.Attachment))
	for _, item := range o.Attachment {
		if item.Kind == LinkItem && item.Link.Href != "" {
			attachments = append(attachments, item.Link.Attachment())
		}
	}
	return attachments
}

// Time is a wrapper around time.Time with fallback if parsing of RFC3339 fails.
type Time struct {
	time.Time
}

var timeLayouts = []string{
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
}

func (t *Time) UnmarshalJSON(b []byte) error {
	err := t.Time.UnmarshalJSON(b)
	if err == nil || len(b) <= 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return err
	}

	for _, layout := range timeLayouts {
		if parsed, perr := time.Parse(layout, string(b[1:len(b)-1])); perr == nil {
			t.Time = parsed
			return nil
		}
	}

	return err
}
