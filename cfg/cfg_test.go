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

package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFillDefaults_Empty(t *testing.T) {
	var c Config
	c.FillDefaults()

	assert.Equal(t, 16, c.MaxResolverRequests)
	assert.Equal(t, time.Hour*6, c.ResolverCacheTTL)
	assert.Equal(t, int64(1024*1024), c.MaxResponseBodySize)
	assert.Equal(t, time.Hour*24*7, c.CacheRetention)
	assert.NotEmpty(t, c.DatabaseOptions)
}

func TestFillDefaults_KeepsValid(t *testing.T) {
	c := Config{MaxResolverRequests: 2, RequestTimeout: time.Second}
	c.FillDefaults()

	assert.Equal(t, 2, c.MaxResolverRequests)
	assert.Equal(t, time.Second, c.RequestTimeout)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Server":"https://a.localdomain/api","User":"alice","MaxResolverRequests":-1,"ResolverCacheTTL":60000000000}`), 0o600))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://a.localdomain/api", c.Server)
	assert.Equal(t, "alice", c.User)
	assert.Equal(t, 16, c.MaxResolverRequests)
	assert.Equal(t, time.Minute, c.ResolverCacheTTL)
}

func TestLoad_NoFile(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 16, c.MaxResolverRequests)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
