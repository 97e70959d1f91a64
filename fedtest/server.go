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

package fedtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"testing"
)

type response struct {
	StatusCode int
	Body       []byte
}

// Server is a fake federated server that serves canned responses.
//
// Responses are keyed by path and query, so /users/alice/followers?page=2 and
// /users/alice/followers?page=3 are different responses.
type Server struct {
	Test   *testing.T
	Domain string

	lock      sync.Mutex
	responses map[string]response
	requests  []*http.Request
	gate      chan struct{}
}

// NewServer returns a new [Server] and adds it to client.
func NewServer(t *testing.T, domain string, client Client) *Server {
	s := &Server{
		Test:      t,
		Domain:    domain,
		responses: map[string]response{},
	}

	if client != nil {
		client[domain] = s
	}

	return s
}

// URL returns the absolute URL of a path on this server.
func (s *Server) URL(path string) string {
	return fmt.Sprintf("https://%s%s", s.Domain, path)
}

// Serve adds a response with status code 200 and v encoded as JSON.
func (s *Server) Serve(path string, v any) {
	var body []byte
	switch v := v.(type) {
	case string:
		body = []byte(v)
	case []byte:
		body = v
	default:
		var err error
		if body, err = json.Marshal(v); err != nil {
			s.Test.Fatalf("Failed to marshal %s: %v", path, err)
		}
	}

	s.ServeStatus(path, http.StatusOK, body)
}

// ServeStatus adds a response with a given status code.
func (s *Server) ServeStatus(path string, statusCode int, body []byte) {
	s.lock.Lock()
	s.responses[path] = response{StatusCode: statusCode, Body: body}
	s.lock.Unlock()
}

// Webfinger adds a WebFinger response that maps name@domain to an actor ID.
func (s *Server) Webfinger(name, actorID string) {
	s.Serve(
		"/.well-known/webfinger?resource="+url.QueryEscape(fmt.Sprintf("acct:%s@%s", name, s.Domain)),
		map[string]any{
			"subject": fmt.Sprintf("acct:%s@%s", name, s.Domain),
			"links": []map[string]string{
				{
					"rel":  "self",
					"type": "application/activity+json",
					"href": actorID,
				},
			},
		},
	)
}

// Hold blocks all requests until the returned function is called.
func (s *Server) Hold() func() {
	gate := make(chan struct{})

	s.lock.Lock()
	s.gate = gate
	s.lock.Unlock()

	return sync.OnceFunc(func() {
		s.lock.Lock()
		s.gate = nil
		s.lock.Unlock()
		close(gate)
	})
}

// Requests returns the path and query of each request received so far.
func (s *Server) Requests() []string {
	s.lock.Lock()
	defer s.lock.Unlock()

	paths := make([]string, 0, len(s.requests))
	for _, r := range s.requests {
		paths = append(paths, r.URL.RequestURI())
	}

	return paths
}

// LastRequest returns the last request received or nil.
func (s *Server) LastRequest() *http.Request {
	s.lock.Lock()
	defer s.lock.Unlock()

	if len(s.requests) == 0 {
		return nil
	}

	return s.requests[len(s.requests)-1]
}

// Count returns the number of requests for a path.
func (s *Server) Count(path string) int {
	n := 0
	for _, p := range s.Requests() {
		if p == path {
			n++
		}
	}
	return n
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.RequestURI()

	s.lock.Lock()
	s.requests = append(s.requests, r)
	resp, ok := s.responses[path]
	gate := s.gate
	s.lock.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			w.WriteHeader(http.StatusGatewayTimeout)
			return
		}
	}

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/activity+json")
	w.WriteHeader(resp.StatusCode)
	w.Write(resp.Body)
}
