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

// Package notify delivers user-visible messages.
package notify

import (
	"context"
	"log/slog"
	"sync"
)

// Notifier delivers a user-visible error or warning message.
type Notifier interface {
	Error(ctx context.Context, msg string)
	Warning(ctx context.Context, msg string)
}

// Log is a [Notifier] that writes messages to the log.
type Log struct{}

func (Log) Error(ctx context.Context, msg string) {
	slog.ErrorContext(ctx, msg)
}

func (Log) Warning(ctx context.Context, msg string) {
	slog.WarnContext(ctx, msg)
}

// Severity is the severity of a [Message].
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Message is a message delivered to a [Collector].
type Message struct {
	Severity Severity
	Text     string
}

// Collector is a [Notifier] that records messages.
type Collector struct {
	lock     sync.Mutex
	messages []Message
}

func (c *Collector) add(s Severity, msg string) {
	c.lock.Lock()
	c.messages = append(c.messages, Message{Severity: s, Text: msg})
	c.lock.Unlock()
}

func (c *Collector) Error(_ context.Context, msg string) {
	c.add(Error, msg)
}

func (c *Collector) Warning(_ context.Context, msg string) {
	c.add(Warning, msg)
}

// Messages returns a copy of all messages received so far.
func (c *Collector) Messages() []Message {
	c.lock.Lock()
	defer c.lock.Unlock()

	return append([]Message(nil), c.messages...)
}

// Errors returns the text of all error messages.
func (c *Collector) Errors() []string {
	return c.filter(Error)
}

// Warnings returns the text of all warning messages.
func (c *Collector) Warnings() []string {
	return c.filter(Warning)
}

func (c *Collector) filter(s Severity) []string {
	var texts []string
	for _, m := range c.Messages() {
		if m.Severity == s {
			texts = append(texts, m.Text)
		}
	}
	return texts
}
