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
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// MediaURL returns the address of uri in a media proxy.
// It returns uri if host or uri is empty.
func MediaURL(host, uri string) string {
	if host == "" || uri == "" {
		return uri
	}

	hash := md5.Sum([]byte(uri))
	return strings.TrimSuffix(host, "/") + "/media/" + hex.EncodeToString(hash[:])
}
