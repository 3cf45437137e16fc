// Package assets bundles the front-end files into the binary.
package assets

import _ "embed"

// Index is the raw map page; the server minifies it at startup.
//
//go:embed index.html
var Index []byte

// ErrorPage is the terminal page served when the basemap never became
// ready.
//
//go:embed error.html
var ErrorPage []byte

// Favicon is the site icon.
//
//go:embed favicon.svg
var Favicon []byte
