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

package logcontext

import (
	"context"

	"github.com/google/uuid"
)

// Add adds log fields to a [context.Context].
//
// Arguments should be in the same format as [slog.Logger.Log].
//
// Use [NewHandler] to obtain a [slog.Handler] that logs these fields.
func Add(ctx context.Context, args ...any) context.Context {
	if v := ctx.Value(key); v != nil {
		prev := v.([]any)
		merged := make([]any, 0, len(prev)+len(args))
		merged = append(merged, prev...)
		return context.WithValue(ctx, key, append(merged, args...))
	}

	return context.WithValue(ctx, key, args)
}

// NewCycle adds a unique "cycle" field and other fields to a [context.Context].
//
// It is used to correlate all log records of a single fetch cycle.
func NewCycle(ctx context.Context, args ...any) context.Context {
	id, err := uuid.NewV7()
	if err != nil {
		return Add(ctx, args...)
	}

	return Add(ctx, append([]any{"cycle", id.String()}, args...)...)
}
