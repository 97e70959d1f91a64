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
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dimkr/apfeed/cfg"
	gojwt "github.com/golang-jwt/jwt/v5"
)

const userAgent = "apfeed/1.0"

// Client is a HTTP client.
type Client interface {
	Do(*http.Request) (*http.Response, error)
}

// NewClient returns a [http.Client] configured according to cfg.
func NewClient(cfg *cfg.Config) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = cfg.MaxIdleConns
	transport.IdleConnTimeout = cfg.IdleConnTimeout

	return &http.Client{
		Transport: transport,
		Timeout:   cfg.RequestTimeout,
	}
}

// TokenSource supplies the session token attached to requests sent to the home server.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a [TokenSource] that always returns the same token.
type StaticToken string

func (t StaticToken) Token() (string, error) {
	if err := checkExpiry(string(t)); err != nil {
		return "", err
	}

	return string(t), nil
}

// FileToken is a [TokenSource] that reads the token from a file, on every request.
type FileToken string

func (p FileToken) Token() (string, error) {
	buf, err := os.ReadFile(string(p))
	if err != nil {
		return "", fmt.Errorf("failed to read token from %s: %w", string(p), err)
	}

	token := strings.TrimSpace(string(buf))
	if token == "" {
		return "", fmt.Errorf("token file %s is empty", string(p))
	}

	if err := checkExpiry(token); err != nil {
		return "", err
	}

	return token, nil
}

// checkExpiry returns [ErrUnauthorized] if token is a JWT and its exp claim has passed.
// The signature is not verified and other tokens are not checked.
func checkExpiry(token string) error {
	claims := gojwt.MapClaims{}
	if _, _, err := gojwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}

	if time.Now().After(exp.Time) {
		return fmt.Errorf("token expired at %s: %w", exp.Time.Format(time.RFC3339), ErrUnauthorized)
	}

	return nil
}
