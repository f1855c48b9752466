// Copyright 2026 CareOps
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package scrape extracts anti-forgery tokens from vendor page markup.
//
// The extraction rules are deliberately isolated here: the portals have
// no API, so the only source of a CSRF token is the page body, and the
// markup details change without notice.
package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Token field names tried in order. The portal is Django-flavored, so
// csrfmiddlewaretoken comes first; csrf_token catches generic forms and
// the meta tag covers pages without a form.
const (
	PrimaryTokenField = "csrfmiddlewaretoken"
	GenericTokenField = "csrf_token"
	MetaTokenName     = "csrf-token"
)

// Token extracts an anti-forgery token from page markup, trying the
// primary input field, the generic input field, and the meta tag in that
// order. Field name matching is case-insensitive.
func Token(body string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", false
	}

	if value, ok := inputValue(doc, PrimaryTokenField); ok {
		return value, true
	}
	if value, ok := inputValue(doc, GenericTokenField); ok {
		return value, true
	}
	return metaContent(doc, MetaTokenName)
}

func inputValue(doc *goquery.Document, field string) (string, bool) {
	var value string
	doc.Find("input").EachWithBreak(func(i int, s *goquery.Selection) bool {
		name, _ := s.Attr("name")
		if !strings.EqualFold(name, field) {
			return true
		}
		v, exists := s.Attr("value")
		if !exists || v == "" {
			return true
		}
		value = v
		return false
	})
	return value, value != ""
}

func metaContent(doc *goquery.Document, name string) (string, bool) {
	var value string
	doc.Find("meta").EachWithBreak(func(i int, s *goquery.Selection) bool {
		n, _ := s.Attr("name")
		if !strings.EqualFold(n, name) {
			return true
		}
		v, exists := s.Attr("content")
		if !exists || v == "" {
			return true
		}
		value = v
		return false
	})
	return value, value != ""
}
