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
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dimkr/apfeed/ap"
	"github.com/dimkr/apfeed/cfg"
	"github.com/dimkr/apfeed/notify"
)

var errNoSuchPage = errors.New("no such page")

type pageKey struct {
	Page   int
	Filter string
}

type fakeFetcher struct {
	lock  sync.Mutex
	pages map[pageKey]*ap.CollectionPage
	errs  map[pageKey]error
	gates map[pageKey]chan struct{}
	calls []pageKey
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages: map[pageKey]*ap.CollectionPage{},
		errs:  map[pageKey]error{},
		gates: map[pageKey]chan struct{}{},
	}
}

func (f *fakeFetcher) Serve(page int, filter string, p *ap.CollectionPage) {
	f.lock.Lock()
	f.pages[pageKey{page, filter}] = p
	f.lock.Unlock()
}

func (f *fakeFetcher) Fail(page int, filter string, err error) {
	f.lock.Lock()
	f.errs[pageKey{page, filter}] = err
	f.lock.Unlock()
}

// Hold blocks requests for a page until the returned function is called.
func (f *fakeFetcher) Hold(page int, filter string) func() {
	gate := make(chan struct{})
	f.lock.Lock()
	f.gates[pageKey{page, filter}] = gate
	f.lock.Unlock()
	return sync.OnceFunc(func() { close(gate) })
}

func (f *fakeFetcher) Calls() []pageKey {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]pageKey(nil), f.calls...)
}

func (f *fakeFetcher) FetchPage(ctx context.Context, _ string, page int, filter string) (*ap.CollectionPage, error) {
	k := pageKey{page, filter}

	f.lock.Lock()
	f.calls = append(f.calls, k)
	p := f.pages[k]
	err := f.errs[k]
	gate := f.gates[k]
	f.lock.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err != nil {
		return nil, err
	}

	if p == nil {
		return nil, errNoSuchPage
	}

	return p, nil
}

type fakeResolver struct {
	lock    sync.Mutex
	objects map[string]*ap.Object
	delays  map[string]time.Duration
	calls   []string
}

func newFakeResolver(objects ...*ap.Object) *fakeResolver {
	r := &fakeResolver{
		objects: map[string]*ap.Object{},
		delays:  map[string]time.Duration{},
	}
	for _, o := range objects {
		r.objects[o.ID] = o
	}
	return r
}

func (r *fakeResolver) Calls() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *fakeResolver) ResolveID(ctx context.Context, id string) (*ap.Object, error) {
	r.lock.Lock()
	r.calls = append(r.calls, id)
	o := r.objects[id]
	delay := r.delays[id]
	r.lock.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	if o == nil {
		return nil, errors.New("unreachable: " + id)
	}

	copied := *o
	return &copied, nil
}

func parsePage(t *testing.T, raw string) *ap.CollectionPage {
	var p ap.CollectionPage
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("Failed to parse page: %v", err)
	}
	return &p
}

func parseItem(t *testing.T, raw string) ap.Item {
	var item ap.Item
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		t.Fatalf("Failed to parse item: %v", err)
	}
	return item
}

func newTestFeed(fetcher PageFetcher, resolver Resolver) (*Feed, *notify.Collector) {
	var cfg cfg.Config
	cfg.FillDefaults()

	var notifier notify.Collector
	return New(&cfg, fetcher, resolver, &notifier), &notifier
}

var (
	alice = &ap.Object{ID: "https://a.example/users/alice", Type: ap.Person, PreferredUsername: "alice"}
	bob   = &ap.Object{ID: "https://b.example/users/bob", Type: ap.Person, PreferredUsername: "bob"}
)
