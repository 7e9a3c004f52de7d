// Package assets holds the files compiled into blogd.
package assets

import (
	"embed"
)

// Templates holds the page shown when the site has not been built yet.
//
//go:embed templates/*
var Templates embed.FS
