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
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

type webFingerProperties struct {
	Type string `json:"https://www.w3.org/ns/activitystreams#type"`
}

type webFingerLink struct {
	Rel        string              `json:"rel"`
	Type       string              `json:"type"`
	Href       string              `json:"href"`
	Properties webFingerProperties `json:"properties"`
}

type webFingerResponse struct {
	Subject string          `json:"subject"`
	Links   []webFingerLink `json:"links"`
}

var ErrInvalidHandle = errors.New("invalid handle")

// SplitHandle splits a handle like @alice@example.com into a user name and a host.
func SplitHandle(handle string) (string, string, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")

	i := strings.LastIndexByte(handle, '@')
	if i <= 0 || i == len(handle)-1 {
		return "", "", fmt.Errorf("%s: %w", handle, ErrInvalidHandle)
	}

	host, err := idna.Lookup.ToASCII(handle[i+1:])
	if err != nil {
		return "", "", fmt.Errorf("%s: %w: %w", handle, ErrInvalidHandle, err)
	}

	return handle[:i], strings.ToLower(host), nil
}

// Webfinger resolves a handle like alice@example.com to an actor ID.
func (t *Transport) Webfinger(ctx context.Context, handle string) (string, error) {
	name, host, err := SplitHandle(handle)
	if err != nil {
		return "", err
	}

	finger := fmt.Sprintf("https://%s/.well-known/webfinger?resource=%s", host, url.QueryEscape("acct:"+name+"@"+host))

	var resp webFingerResponse
	if err := t.get(ctx, finger, "application/jrd+json, application/json", false, &resp); err != nil {
		return "", err
	}

	var fallback string
	for _, link := range resp.Links {
		if link.Rel != "self" || link.Href == "" {
			continue
		}

		if link.Type == "application/activity+json" || strings.HasPrefix(link.Type, "application/ld+json") {
			return link.Href, nil
		}

		if fallback == "" {
			fallback = link.Href
		}
	}

	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("no profile link in %s response: %w", finger, ErrNotFound)
}
