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

package main

import (
	"errors"
	"io"
	"regexp"
	"strings"

	tokenizer "golang.org/x/net/html"
)

var multipleLineBreaksRegex = regexp.MustCompile(`\n{3,}`)

// toPlain converts the HTML content of a post to plain text.
// Links are replaced by their text and invisible spans are skipped.
func toPlain(text string) (string, error) {
	var b strings.Builder

	tok := tokenizer.NewTokenizer(strings.NewReader(text))

	depth := 0
	invisibleDepth := 0
	ellipsisDepth := 0
	for {
		tt := tok.Next()
		switch tt {
		case tokenizer.ErrorToken:
			if err := tok.Err(); !errors.Is(err, io.EOF) {
				return "", err
			}

			return strings.TrimRight(multipleLineBreaksRegex.ReplaceAllLiteralString(b.String(), "\n\n"), " \n\r\t"), nil

		case tokenizer.TextToken:
			if invisibleDepth == 0 {
				b.Write(tok.Text())
			}

		case tokenizer.EndTagToken:
			tagBytes, _ := tok.TagName()
			tag := string(tagBytes)

			if tag == "p" || tag == "li" || (len(tag) == 2 && tag[0] == 'h' && tag[1] > '0' && tag[1] <= '9') {
				b.WriteString("\n\n")
			}

			if depth == ellipsisDepth && ellipsisDepth > 0 {
				if invisibleDepth == 0 {
					b.WriteRune('…')
				}
				ellipsisDepth = 0
			}

			if depth == invisibleDepth {
				invisibleDepth = 0
			}

			if depth > 0 {
				depth--
			}

		case tokenizer.StartTagToken, tokenizer.SelfClosingTagToken:
			tagBytes, hasAttrs := tok.TagName()
			tag := string(tagBytes)

			if tag == "br" {
				b.WriteByte('\n')
				continue
			}

			if tt == tokenizer.SelfClosingTagToken {
				continue
			}

			depth++

			if tag == "li" {
				b.WriteString("* ")
			}

			for hasAttrs {
				attr, value, more := tok.TagAttr()
				if tag == "span" && string(attr) == "class" {
					switch string(value) {
					case "invisible":
						if invisibleDepth == 0 {
							invisibleDepth = depth
						}
					case "ellipsis":
						ellipsisDepth = depth
					}
				}
				hasAttrs = more
			}
		}
	}
}
