// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown converts post content into HTML for display and into
// plain text for the civility gate. Post content may be Markdown, raw HTML
// from the rich-text editor, or a mix of both.
package markdown

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// md is the configured goldmark instance, reused across calls.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
		highlighting.NewHighlighting(
			highlighting.WithStyle("monokai"),
			highlighting.WithFormatOptions(),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		gmhtml.WithUnsafe(), // raw HTML from the rich-text editor must survive; Render sanitizes afterwards
	),
)

var (
	stripPolicy = bluemonday.StripTagsPolicy().AddSpaceWhenStrippingTag(true)
	ugcPolicy   = newUGCPolicy()
)

func newUGCPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	// Syntax highlighting emits inline styles and classes on spans.
	p.AllowAttrs("class").OnElements("span", "pre", "code")
	p.AllowAttrs("style").OnElements("span", "pre")
	return p
}

// ToHTML converts Markdown source into HTML. Raw HTML embedded in the
// source is passed through unchanged.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Render converts source to HTML that is safe to embed in a page.
func Render(source string) (string, error) {
	out, err := ToHTML(source)
	if err != nil {
		return "", err
	}
	return ugcPolicy.Sanitize(out), nil
}

// PlainText strips all markup from source and decodes HTML entities, leaving
// the words a reader would see.
func PlainText(source string) string {
	rendered, err := ToHTML(source)
	if err != nil {
		rendered = source
	}
	text := html.UnescapeString(stripPolicy.Sanitize(rendered))
	return strings.Join(strings.Fields(text), " ")
}
