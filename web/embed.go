// Package web holds the portal's page templates and browser assets.
package web

import "embed"

// Templates embeds the layouts, partials and pages rendered by internal/view
// (merchant list, create form, product analytics, error page).
//
//go:embed templates/**/*.html
var Templates embed.FS

// Static embeds the stylesheet and the search keystroke script served under /static.
//
//go:embed static/**/*
var Static embed.FS
