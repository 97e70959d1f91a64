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

package fed

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/dimkr/apfeed/ap"
	"github.com/dimkr/apfeed/cfg"
	"github.com/dimkr/apfeed/fedtest"
	"github.com/stretchr/testify/assert"
)

func newTestResolver(t *testing.T, client fedtest.Client, blocked *BlockList) *Resolver {
	var cfg cfg.Config
	cfg.FillDefaults()

	cache, err := NewCache(context.Background(), fedtest.OpenDB(t))
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}

	return NewResolver(blocked, &cfg, NewTransport(&cfg, client, "https://home.example", nil), cache)
}

func TestResolve_HappyFlow(t *testing.T) {
	assert := assert.New(t)

	client := fedtest.Client{}
	remote := fedtest.NewServer(t, "b.example", client)
	remote.Serve("/notes/1", `{"id":"https://b.example/notes/1","type":"Note","content":"hello"}`)

	o, err := newTestResolver(t, client, nil).ResolveID(context.Background(), "https://b.example/notes/1")
	assert.NoError(err)
	assert.Equal("hello", o.Content)
}

func TestResolve_Cached(t *testing.T) {
	assert := assert.New(t)

	client := fedtest.Client{}
	remote := fedtest.NewServer(t, "b.example", client)
	remote.Serve("/notes/1", `{"id":"https://b.example/notes/1","type":"Note","content":"hello"}`)

	resolver := newTestResolver(t, client, nil)

	_, err := resolver.ResolveID(context.Background(), "https://b.example/notes/1")
	assert.NoError(err)

	o, err := resolver.ResolveID(context.Background(), "https://b.example/notes/1")
	assert.NoError(err)
	assert.Equal("hello", o.Content)
	assert.Equal(1, remote.Count("/notes/1"))
}

func TestResolve_CopyPerCaller(t *testing.T) {
	assert := assert.New(t)

	client := fedtest.Client{}
	remote := fedtest.NewServer(t, "b.example", client)
	remote.Serve("/notes/1", `{"id":"https://b.example/notes/1","type":"Note","content":"hello"}`)

	resolver := newTestResolver(t, client, nil)

	first, err := resolver.ResolveID(context.Background(), "https://b.example/notes/1")
	assert.NoError(err)
	first.Content = "changed"

	second, err := resolver.ResolveID(context.Background(), "https://b.example/notes/1")
	assert.NoError(err)
	assert.Equal("hello", second.Content)
}

func TestResolve_OldCacheEntryRefreshed(t *testing.T) {
	assert := assert.New(t)

	client := fedtest.Client{}
	remote := fedtest.NewServer(t, "b.example", client)
	remote.Serve("/notes/1", `{"id":"https://b.example/notes/1","type":"Note","content":"hello"}`)

	resolver := newTestResolver(t, client, nil)
	resolver.Config.ResolverCacheTTL = 0

	_, err := resolver.ResolveID(context.Background(), "https://b.example/notes/1")
	assert.NoError(err)

	remote.Serve("/notes/1", `{"id":"https://b.example/notes/1","type":"Note","content":"edited"}`)

	o, err := resolver.ResolveID(context.Background(), "https://b.example/notes/1")
	assert.NoError(err)
	assert.Equal("edited", o.Content)
	assert.Equal(2, remote.Count("/notes/1"))
}

func TestResolve_OldCacheEntryUsedOnError(t *testing.T) {
	assert := assert.New(t)

	client := fedtest.Client{}
	remote := fedtest.NewServer(t, "b.example", client)
	remote.Serve("/notes/1", `{"id":"https://b.example/notes/1","type":"Note","content":"hello"}`)

	resolver := newTestResolver(t, client, nil)
	resolver.Config.ResolverCacheTTL = 0

	_, err := resolver.ResolveID(context.Background(), "https://b.example/notes/1")
	assert.NoError(err)

	remote.ServeStatus("/notes/1", http.StatusServiceUnavailable, nil)

	o, err := resolver.ResolveID(context.Background(), "https://b.example/notes/1")
	assert.NoError(err)
	assert.Equal("hello", o.Content)
}

func TestResolve_GoneDeletesCacheEntry(t *testing.T) {
	assert := assert.New(t)

	client := fedtest.Client{}
	remote := fedtest.NewServer(t, "b.example", client)
	remote.Serve("/notes/1", `{"id":"https://b.example/notes/1","type":"Note","content":"hello"}`)

	resolver := newTestResolver(t, client, nil)
	resolver.Config.ResolverCacheTTL = 0

	_, err := resolver.ResolveID(context.Background(), "https://b.example/notes/1")
	assert.NoError(err)

	remote.ServeStatus("/notes/1", http.StatusGone, nil)

	_, err = resolver.ResolveID(context.Background(), "https://b.example/notes/1")
	assert.ErrorIs(err, ErrNotFound)

	cached, _, err := resolver.cache.Get(context.Background(), "https://b.example/notes/1")
	assert.NoError(err)
	assert.Nil(cached)
}

func TestResolve_BlockedDomain(t *testing.T) {
	assert := assert.New(t)

	client := fedtest.Client{}
	remote := fedtest.NewServer(t, "b.example", client)
	remote.Serve("/notes/1", `{"id":"https://b.example/notes/1","type":"Note","content":"hello"}`)

	blocked := &BlockList{domains: map[string]struct{}{"b.example": {}}}

	_, err := newTestResolver(t, client, blocked).ResolveID(context.Background(), "https://b.example/notes/1")
	assert.ErrorIs(err, ErrBlockedDomain)
	assert.Empty(remote.Requests())
}

func TestResolve_InvalidScheme(t *testing.T) {
	assert := assert.New(t)

	_, err := newTestResolver(t, fedtest.Client{}, nil).ResolveID(context.Background(), "ftp://b.example/notes/1")
	assert.ErrorIs(err, ErrInvalidScheme)
}

func TestResolve_EmptyID(t *testing.T) {
	assert := assert.New(t)

	_, err := newTestResolver(t, fedtest.Client{}, nil).ResolveID(context.Background(), "")
	assert.ErrorIs(err, ErrInvalidID)
}

func TestResolve_HostMismatch(t *testing.T) {
	assert := assert.New(t)

	client := fedtest.Client{}
	remote := fedtest.NewServer(t, "b.example", client)
	remote.Serve("/notes/1", `{"id":"https://evil.example/notes/1","type":"Note","content":"hello"}`)

	_, err := newTestResolver(t, client, nil).ResolveID(context.Background(), "https://b.example/notes/1")
	assert.ErrorIs(err, ErrInvalidHost)
}

func TestResolve_NoID(t *testing.T) {
	assert := assert.New(t)

	client := fedtest.Client{}
	remote := fedtest.NewServer(t, "b.example", client)
	remote.Serve("/notes/1", `{"type":"Note","content":"hello"}`)

	_, err := newTestResolver(t, client, nil).ResolveID(context.Background(), "https://b.example/notes/1")
	assert.ErrorIs(err, ErrInvalidID)
}

func TestResolve_ConcurrentRequestsCoalesced(t *testing.T) {
	assert := assert.New(t)

	client := fedtest.Client{}
	remote := fedtest.NewServer(t, "b.example", client)
	remote.Serve("/notes/1", `{"id":"https://b.example/notes/1","type":"Note","content":"hello"}`)
	release := remote.Hold()

	resolver := newTestResolver(t, client, nil)

	var wg sync.WaitGroup
	results := make([]*ap.Object, 4)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = resolver.ResolveID(context.Background(), "https://b.example/notes/1")
		}()
	}

	assert.Eventually(func() bool { return len(remote.Requests()) == 1 }, time.Second, time.Millisecond)
	time.Sleep(time.Millisecond * 50)
	release()
	wg.Wait()

	assert.Equal(1, remote.Count("/notes/1"))
	for _, o := range results {
		if assert.NotNil(o) {
			assert.Equal("hello", o.Content)
		}
	}
}

func TestResolve_CanceledCallerDoesNotCancelOthers(t *testing.T) {
	assert := assert.New(t)

	client := fedtest.Client{}
	remote := fedtest.NewServer(t, "b.example", client)
	remote.Serve("/notes/1", `{"id":"https://b.example/notes/1","type":"Note","content":"hello"}`)
	release := remote.Hold()
	defer release()

	resolver := newTestResolver(t, client, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := make(chan error, 1)
	go func() {
		_, err := resolver.ResolveID(ctx, "https://b.example/notes/1")
		first <- err
	}()

	assert.Eventually(func() bool { return len(remote.Requests()) == 1 }, time.Second, time.Millisecond)

	type result struct {
		Object *ap.Object
		Err    error
	}
	second := make(chan result, 1)
	go func() {
		o, err := resolver.ResolveID(context.Background(), "https://b.example/notes/1")
		second <- result{o, err}
	}()

	time.Sleep(time.Millisecond * 50)
	cancel()
	assert.ErrorIs(<-first, context.Canceled)

	release()
	r := <-second
	if assert.NoError(r.Err) && assert.NotNil(r.Object) {
		assert.Equal("hello", r.Object.Content)
	}
	assert.Equal(1, remote.Count("/notes/1"))
}
