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

// Posts returns the posts in items.
//
// Activities that wrap a post are replaced by the post. Other items are skipped.
func Posts(items []ap.Item) []*ap.Object {
	posts := make([]*ap.Object, 0, len(items))

	for _, item := range items {
		if item.Kind != ap.ObjectItem {
			continue
		}

		if item.Object.Type.IsPost() {
			posts = append(posts, item.Object)
		} else if inner := item.Object.Inner(); item.Object.Type.IsActivity() && inner != nil && inner.Type.IsPost() {
			posts = append(posts, inner)
		}
	}

	return posts
}

// attributedTo determines whether an item was created or performed by an actor.
func attributedTo(item ap.Item, actor string) bool {
	if item.Kind != ap.ObjectItem {
		return false
	}

	if item.Object.Author() == actor {
		return true
	}

	inner := item.Object.Inner()
	return inner != nil && inner.Author() == actor
}
