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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dimkr/apfeed/ap"
	"github.com/dimkr/apfeed/cfg"
)

const (
	activityJSON = `application/activity+json, application/ld+json; profile="https://www.w3.org/ns/activitystreams"`
	plainJSON    = "application/json"
)

// Transport fetches collection pages and objects.
//
// Requests to the home server carry the session token; requests to other servers are anonymous.
type Transport struct {
	// Server is the base URL of the home server's API.
	Server string
	Tokens TokenSource
	Config *cfg.Config
	client Client
}

// NewTransport returns a new [Transport].
func NewTransport(cfg *cfg.Config, client Client, server string, tokens TokenSource) *Transport {
	return &Transport{
		Server: strings.TrimSuffix(server, "/"),
		Tokens: tokens,
		Config: cfg,
		client: client,
	}
}

func (t *Transport) get(ctx context.Context, target, accept string, authenticated bool, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", target, err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", accept)

	if authenticated && t.Tokens != nil {
		token, err := t.Tokens.Token()
		if errors.Is(err, ErrUnauthorized) {
			slog.InfoContext(ctx, "Not sending request with expired token", "url", target, "error", err)
			return &ResponseError{URL: target, StatusCode: http.StatusUnauthorized, Message: unauthorizedMessage}
		} else if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", target, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	slog.DebugContext(ctx, "Sending request", "url", target)

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w: %w", target, ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, t.Config.MaxResponseBodySize))
		return newResponseError(target, resp.StatusCode, body)
	}

	if resp.ContentLength > t.Config.MaxResponseBodySize {
		return fmt.Errorf("failed to fetch %s: %w", target, ErrResponseTooBig)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, t.Config.MaxResponseBodySize)).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", target, err)
	}

	return nil
}

// FetchPage fetches a page of a user's inbox from the home server.
// If filter is not empty, the server is asked to return only items attributed to this actor.
func (t *Transport) FetchPage(ctx context.Context, user string, page int, filter string) (*ap.CollectionPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	if filter != "" {
		query.Set("filter", "attributedTo="+filter)
	}

	target := fmt.Sprintf("%s/user/%s/inbox?%s", t.Server, url.PathEscape(user), query.Encode())

	var p ap.CollectionPage
	if err := t.get(ctx, target, plainJSON, true, &p); err != nil {
		return nil, err
	}

	return &p, nil
}

// FetchCollection fetches a page of a remote collection.
func (t *Transport) FetchCollection(ctx context.Context, collection string, page int) (*ap.CollectionPage, error) {
	u, err := parseID(collection)
	if err != nil {
		return nil, err
	}

	query := u.Query()
	query.Set("page", strconv.Itoa(page))
	u.RawQuery = query.Encode()

	var p ap.CollectionPage
	if err := t.get(ctx, u.String(), activityJSON, false, &p); err != nil {
		return nil, err
	}

	return &p, nil
}

// FetchEntity fetches an object, an activity or an actor by its ID.
func (t *Transport) FetchEntity(ctx context.Context, id string) (*ap.Object, error) {
	if _, err := parseID(id); err != nil {
		return nil, err
	}

	var o ap.Object
	if err := t.get(ctx, id, activityJSON, false, &o); err != nil {
		return nil, err
	}

	return &o, nil
}

func parseID(id string) (*url.URL, error) {
	if id == "" {
		return nil, fmt.Errorf("empty ID: %w", ErrInvalidID)
	}

	u, err := url.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", id, ErrInvalidID)
	}

	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, fmt.Errorf("cannot fetch %s: %w", id, ErrInvalidScheme)
	}

	if u.Host == "" {
		return nil, fmt.Errorf("cannot fetch %s: %w", id, ErrInvalidHost)
	}

	return u, nil
}
