// Package templates renders the server's HTML pages as templ components.
//
// Edit the .templ files and regenerate the *_templ.go files with
// "templ generate".
package templates

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.960 generate
