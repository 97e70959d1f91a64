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
)

type LinkType string

const (
	PlainLink   LinkType = "Link"
	MentionLink LinkType = "Mention"
	HashtagLink LinkType = "Hashtag"
)

// IsLink determines whether an object with this type is a link rather than an object.
func (t LinkType) IsLink() bool {
	return t == PlainLink || t == MentionLink || t == HashtagLink
}

// Link is an ActivityStreams Link.
type Link struct {
	Type      LinkType `json:"type,omitempty"`
	Href      string   `json:"href"`
	Name      string   `json:"name,omitempty"`
	MediaType string   `json:"mediaType,omitempty"`
	Width     int      `json:"width,omitempty"`
	Height    int      `json:"height,omitempty"`
}

func (l *Link) UnmarshalJSON(b []byte) error {
	// some servers send type as a single-element array
	var tmp struct {
		Type      Array[LinkType] `json:"type"`
		Href      string          `json:"href"`
		Name      string          `json:"name"`
		MediaType string          `json:"mediaType"`
		Width     int             `json:"width"`
		Height    int             `json:"height"`
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return fmt.Errorf("invalid link: %w", err)
	}

	*l = Link{
		Href:      tmp.Href,
		Name:      tmp.Name,
		MediaType: tmp.MediaType,
		Width:     tmp.Width,
		Height:    tmp.Height,
	}
	if len(tmp.Type) > 0 {
		l.Type = tmp.Type[0]
	}

	return nil
}

// Attachment returns the displayable form of a link.
func (l *Link) Attachment() Attachment {
	return Attachment{
		URL:       l.Href,
		Title:     l.Name,
		MediaType: l.MediaType,
		Width:     l.Width,
		Height:    l.Height,
	}
}
