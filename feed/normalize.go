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

import "github.com/dimkr/apfeed/ap"

// Normalize returns a copy of item with its attachments converted to links.
//
// If item is an activity that wraps an object, the attachments of the wrapped object are normalized
// instead. Empty entries are omitted. Normalizing a normalized item changes nothing.
func Normalize(item ap.Item) ap.Item {
	if item.Kind != ap.ObjectItem {
		return item
	}

	o := *item.Object

	if inner := o.Inner(); o.Type.IsActivity() && inner != nil {
		normalized := *inner
		normalized.Attachment = normalizeAttachments(inner.Attachment)
		wrapped := ap.Embed(&normalized)
		o.Object = &wrapped
	} else {
		o.Attachment = normalizeAttachments(o.Attachment)
	}

	return ap.Embed(&o)
}

func normalizeAttachments(attachments ap.Array[ap.Item]) ap.Array[ap.Item] {
	if attachments == nil {
		return nil
	}

	normalized := make(ap.Array[ap.Item], 0, len(attachments))
	for _, entry := range attachments {
		if l := attachmentLink(entry); l != nil {
			normalized = append(normalized, ap.LinkTo(l))
		}
	}

	return normalized
}

func attachmentLink(entry ap.Item) *ap.Link {
	switch entry.Kind {
	case ap.ReferenceItem:
		if entry.Ref == "" {
			return nil
		}
		return &ap.Link{Type: ap.PlainLink, Href: entry.Ref}

	case ap.LinkItem:
		if entry.Link.Href == "" {
			return nil
		}
		return entry.Link.Attachment().Link()

	case ap.ObjectItem:
		return unwrapAttachment(entry.Object)

	default:
		return nil
	}
}

// unwrapAttachment extracts the link from an object like a Document or an Image.
func unwrapAttachment(wrapper *ap.Object) *ap.Link {
	var a ap.Attachment

	for _, u := range wrapper.URL {
		switch u.Kind {
		case ap.ReferenceItem:
			a.URL = u.Ref
		case ap.LinkItem:
			a = u.Link.Attachment()
		}

		if a.URL != "" {
			break
		}
	}

	if a.URL == "" {
		a.URL = wrapper.Href
	}

	if a.URL == "" {
		return nil
	}

	if a.Title == "" {
		a.Title = wrapper.Name
	}
	if a.MediaType == "" {
		a.MediaType = wrapper.MediaType
	}
	if a.Width == 0 {
		a.Width = wrapper.Width
	}
	if a.Height == 0 {
		a.Height = wrapper.Height
	}

	return a.Link()
}
