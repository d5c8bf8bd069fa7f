package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// Slug is the directory and storage-key name of a generated plugin
type Slug string

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Validate checks if the Slug is a single lowercase path segment
func (s Slug) Validate() error {
	if s == "" {
		return goerr.New("slug cannot be empty")
	}
	if !slugPattern.MatchString(string(s)) {
		return goerr.New("slug must be lowercase alphanumeric with single hyphens", goerr.V("slug", s))
	}
	return nil
}

// Prefix returns the slug with hyphens replaced by underscores, for PHP and CSS identifiers
func (s Slug) Prefix() string {
	b := []byte(s)
	for i := range b {
		if b[i] == '-' {
			b[i] = '_'
		}
	}
	return string(b)
}

// String returns the string representation of Slug
func (s Slug) String() string {
	return string(s)
}
