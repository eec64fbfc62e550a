// Package web holds the dashboard page, its HTMX partials and the static
// assets they load.
package web

import "embed"

// TemplatesFS holds the page and one template per partial.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS is served under /static/.
//
//go:embed static/*
var StaticFS embed.FS
