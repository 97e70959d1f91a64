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
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/dimkr/apfeed/ap"
	"github.com/dimkr/apfeed/cfg"
	"github.com/dimkr/apfeed/fedtest"
	"github.com/stretchr/testify/assert"
)

func newTestTransport(client fedtest.Client) *Transport {
	var cfg cfg.Config
	cfg.FillDefaults()

	return NewTransport(&cfg, client, "https://home.example/", StaticToken("s3cr3t"))
}

func inboxPath(user string, page int, filter string) string {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	if filter != "" {
		query.Set("filter", "attributedTo="+filter)
	}
	return "/user/" + user + "/inbox?" + query.Encode()
}

func TestTransport_FetchPage(t *testing.T) {
	assert := assert.New(t)

	client := fedtest.Client{}
	home := fedtest.NewServer(t, "home.example", client)
	home.Serve(inboxPath("alice", 1, ""), `{"type":"OrderedCollectionPage","partOf":"https://home.example/user/alice/inbox","next":"https://home.example/user/alice/inbox?page=2","orderedItems":["https://a.example/notes/1",{"id":"https://b.example/notes/2","type":"Note","content":"hi"}]}`)

	p, err := newTestTransport(client).FetchPage(context.Background(), "alice", 1, "")
	assert.NoError(err)
	assert.Equal(ap.OrderedPage, p.Type)
	assert.Equal("https://home.example/user/alice/inbox", p.PartOf)
	assert.True(p.HasNext())
	assert.Len(p.Entries(), 2)
	assert.Equal(ap.ReferenceItem, p.Entries()[0].Kind)
	assert.Equal(ap.ObjectItem, p.Entries()[1].Kind)

	req := home.LastRequest()
	assert.Equal("Bearer s3cr3t", req.Header.Get("Authorization"))
	assert.Equal("application/json", req.Header.Get("Accept"))
}

func TestTransport_FetchPageWithFilter(t *testing.T) {
	assert := assert.New(t)

	client := fedtest.Client{}
	home := fedtest.NewServer(t, "home.example", client)
	home.Serve(inboxPath("alice", 2, "https://b.example/users/bob"), `{"type":"OrderedCollectionPage","orderedItems":[]}`)

	p, err := newTestTransport(client).FetchPage(context.Background(), "alice", 2, "https://b.example/users/bob")
	assert.NoError(err)
	assert.Empty(p.Entries())
	assert.False(p.HasNext())
	assert.Equal([]string{"/user/alice/inbox?filter=attributedTo%3Dhttps%3A%2F%2Fb.example%2Fusers%2Fbob&page=2"}, home.Requests())
}

func TestTransport_FetchPageUnauthorized(t *testing.T) {
	assert := assert.New(t)

	client := fedtest.Client{}
	home := fedtest.NewServer(t, "home.example", client)
	home.ServeStatus(inboxPath("alice", 1, ""), http.StatusUnauthorized, []byte(`{"detail":"token expired"}`))

	_, err := newTestTransport(client).FetchPage(context.Background(), "alice", 1, "")
	assert.ErrorIs(err, ErrUnauthorized)
	assert.Equal("Authentication failed. Please log in again", err.Error())
}

func TestTransport_FetchPageDetail(t *testing.T) {
	assert := assert.New(t)

	client := fedtest.Client{}
	home := fedtest.NewServer(t, "home.example", client)
	home.ServeStatus(inboxPath("alice", 1, ""), http.StatusBadRequest, []byte(`{"detail":"Invalid page"}`))

	_, err := newTestTransport(client).FetchPage(context.Background(), "alice", 1, "")
	assert.Error(err)
	assert.Equal("Invalid page", err.Error())

	var resp *ResponseError
	assert.True(errors.As(err, &resp))
	assert.Equal(http.StatusBadRequest, resp.StatusCode)
}

func TestTransport_FetchPageTokenError(t *testing.T) {
	assert := assert.New(t)

	client := fedtest.Client{}
	home := fedtest.NewServer(t, "home.example", client)

	transport := newTestTransport(client)
	transport.Tokens = FileToken(t.TempDir() + "/missing")

	_, err := transport.FetchPage(context.Background(), "alice", 1, "")
	assert.Error(err)
	assert.Empty(home.Requests())
}

func TestTransport_FetchPageTransportError(t *testing.T) {
	assert := assert.New(t)

	_, err := newTestTransport(fedtest.Client{}).FetchPage(context.Background(), "alice", 1, "")
	assert.ErrorIs(err, ErrTransport)
}

func TestTransport_FetchCollection(t *testing.T) {
	assert := assert.New(t)

	client := fedtest.Client{}
	remote := fedtest.NewServer(t, "b.example", client)
	remote.Serve("/users/bob/followers?page=3", `{"type":"OrderedCollectionPage","totalItems":42,"orderedItems":["https://c.example/users/carol"]}`)

	p, err := newTestTransport(client).FetchCollection(context.Background(), "https://b.example/users/bob/followers", 3)
	assert.NoError(err)
	assert.Equal(int64(42), p.Total())
	assert.Equal("https://c.example/users/carol", p.Entries()[0].ID())

	req := remote.LastRequest()
	assert.Empty(req.Header.Get("Authorization"))
	assert.Equal(userAgent, req.Header.Get("User-Agent"))
}

func TestTransport_FetchCollectionInvalidScheme(t *testing.T) {
	assert := assert.New(t)

	_, err := newTestTransport(fedtest.Client{}).FetchCollection(context.Background(), "gemini://b.example/users/bob/followers", 1)
	assert.ErrorIs(err, ErrInvalidScheme)
}

func TestTransport_FetchEntity(t *testing.T) {
	assert := assert.New(t)

	client := fedtest.Client{}
	remote := fedtest.NewServer(t, "b.example", client)
	remote.Serve("/notes/1", `{"id":"https://b.example/notes/1","type":"Note","attributedTo":"https://b.example/users/bob","content":"hello"}`)

	o, err := newTestTransport(client).FetchEntity(context.Background(), "https://b.example/notes/1")
	assert.NoError(err)
	assert.Equal(ap.Note, o.Type)
	assert.Equal("https://b.example/users/bob", o.Author())
	assert.Equal("hello", o.Content)
}

func TestTransport_FetchEntityGone(t *testing.T) {
	assert := assert.New(t)

	client := fedtest.Client{}
	remote := fedtest.NewServer(t, "b.example", client)
	remote.ServeStatus("/notes/1", http.StatusGone, nil)

	_, err := newTestTransport(client).FetchEntity(context.Background(), "https://b.example/notes/1")
	assert.ErrorIs(err, ErrNotFound)
}

func TestTransport_FetchEntityTooBig(t *testing.T) {
	assert := assert.New(t)

	client := fedtest.Client{}
	remote := fedtest.NewServer(t, "b.example", client)
	remote.Serve("/notes/1", `{"id":"https://b.example/notes/1","type":"Note","content":"hello"}`)

	transport := newTestTransport(client)
	transport.Config.MaxResponseBodySize = 10

	_, err := transport.FetchEntity(context.Background(), "https://b.example/notes/1")
	assert.ErrorIs(err, ErrResponseTooBig)
}

func TestTransport_FetchEntityEmptyID(t *testing.T) {
	assert := assert.New(t)

	_, err := newTestTransport(fedtest.Client{}).FetchEntity(context.Background(), "")
	assert.ErrorIs(err, ErrInvalidID)
}
