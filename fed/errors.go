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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotFound       = errors.New("not found")
	ErrTransport      = errors.New("transport error")
	ErrBlockedDomain  = errors.New("domain is blocked")
	ErrInvalidScheme  = errors.New("invalid scheme")
	ErrInvalidHost    = errors.New("invalid host")
	ErrInvalidID      = errors.New("invalid ID")
	ErrResponseTooBig = errors.New("response is too big")
)

const unauthorizedMessage = "Authentication failed. Please log in again"

// ResponseError is returned when a server responds with an error status.
//
// Its message is suitable for display: it's the server's description of the error, if it has one.
type ResponseError struct {
	URL        string
	StatusCode int
	Message    string
}

func (e *ResponseError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s returned %d", e.URL, e.StatusCode)
}

func (e *ResponseError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound || e.StatusCode == http.StatusGone
	default:
		return false
	}
}

type violation struct {
	PropertyPath string `json:"propertyPath"`
	Message      string `json:"message"`
}

type problem struct {
	Detail     string      `json:"detail"`
	Violations []violation `json:"violations"`
}

func newResponseError(url string, statusCode int, body []byte) *ResponseError {
	e := ResponseError{URL: url, StatusCode: statusCode}

	if statusCode == http.StatusUnauthorized {
		e.Message = unauthorizedMessage
		return &e
	}

	var p problem
	if err := json.Unmarshal(body, &p); err != nil {
		return &e
	}

	if p.Detail != "" {
		e.Message = p.Detail
	} else if len(p.Violations) > 0 {
		messages := make([]string, 0, len(p.Violations))
		for _, v := range p.Violations {
			messages = append(messages, v.Message)
		}
		e.Message = strings.Join(messages, "\n")
	}

	return &e
}
