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

package main

import (
	"context"

	"github.com/dimkr/apfeed/feed"
	"github.com/dimkr/apfeed/profile"
)

// loadFeed loads up to n pages of a user's inbox. If actor is not empty, only posts by this actor are
// loaded.
func loadFeed(ctx context.Context, f *feed.Feed, subject, actor string, n int) error {
	if actor != "" {
		if err := f.SetFilter(ctx, actor); err != nil {
			return err
		}
	}

	if err := f.LoadFirst(ctx, subject); err != nil {
		return err
	}

	for i := 1; i < n && f.State().HasNext; i++ {
		if err := f.LoadNext(ctx); err != nil {
			break
		}
	}

	return nil
}

// loadRelations appends pages of followers and following until n pages are loaded or a page fails.
func loadRelations(ctx context.Context, p *profile.Profile, n int) error {
	for i := 1; i < n; i++ {
		followers, following := p.Followers().HasNext, p.Following().HasNext
		if !followers && !following {
			break
		}

		if followers {
			if err := p.FetchFollowers(ctx, "", true); err != nil {
				return err
			}
		}

		if following {
			if err := p.FetchFollowing(ctx, "", true); err != nil {
				return err
			}
		}
	}

	return nil
}
