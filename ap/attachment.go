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

// Attachment is a media or link object displayed alongside a post.
type Attachment struct {
	URL       string `json:"url"`
	Title     string `json:"title,omitempty"`
	MediaType string `json:"mediaType,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
}

// Link returns a [Link] equivalent to a.
func (a Attachment) Link() *Link {
	return &Link{
		Type:      PlainLink,
		Href:      a.URL,
		Name:      a.Title,
		MediaType: a.MediaType,
		Width:     a.Width,
		Height:    a.Height,
	}
}
