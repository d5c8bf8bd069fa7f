package plugin

import (
	"regexp"
	"strings"

	"github.com/plugsmith/plugsmith/pkg/domain/model"
	"github.com/plugsmith/plugsmith/pkg/domain/types"
)

// Defaults used when a header field is missing from generated code
const (
	DefaultName        = "Custom WordPress Plugin"
	DefaultVersion     = "1.0.0"
	DefaultDescription = "A custom WordPress plugin"
	DefaultAuthor      = "Plugin Author"
	DefaultSlug        = types.Slug("custom-wordpress-plugin")
)

var (
	namePattern        = regexp.MustCompile(`(?i)\* Plugin Name:[ \t]*(.+)`)
	versionPattern     = regexp.MustCompile(`(?i)\* Version:[ \t]*(.+)`)
	descriptionPattern = regexp.MustCompile(`(?i)\* Description:[ \t]*(.+)`)
	authorPattern      = regexp.MustCompile(`(?i)\* Author:[ \t]*(.+)`)
	shortcodePattern   = regexp.MustCompile(`add_shortcode\s*\(\s*['"]([^'"]+)['"]`)
	nonSlugChars       = regexp.MustCompile(`[^a-z0-9]+`)
)

// reservedSlugs are stems of fixed root files that the main plugin file
// <slug>.php must not shadow
var reservedSlugs = map[string]struct{}{
	"uninstall": {},
	"index":     {},
}

// ReservedSlugSuffix is appended to a slug that equals a reserved stem
const ReservedSlugSuffix = "-plugin"

// ExtractMetadata reads the plugin header fields from code
func ExtractMetadata(code string) model.PluginMetadata {
	return model.PluginMetadata{
		Name:        matchOr(namePattern, code, DefaultName),
		Version:     matchOr(versionPattern, code, DefaultVersion),
		Description: matchOr(descriptionPattern, code, DefaultDescription),
		Author:      matchOr(authorPattern, code, DefaultAuthor),
	}
}

func matchOr(re *regexp.Regexp, code, fallback string) string {
	m := re.FindStringSubmatch(code)
	if m == nil {
		return fallback
	}
	v := strings.TrimSpace(m[1])
	if v == "" {
		return fallback
	}
	return v
}

// Slugify lowercases name and joins alphanumeric runs with single hyphens.
// A name with no alphanumerics yields DefaultSlug. A slug that would collide
// with a fixed root file such as uninstall.php gets ReservedSlugSuffix.
func Slugify(name string) types.Slug {
	s := nonSlugChars.ReplaceAllString(strings.ToLower(name), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return DefaultSlug
	}
	if _, ok := reservedSlugs[s]; ok {
		s += ReservedSlugSuffix
	}
	return types.Slug(s)
}

// DetectShortcode returns the tag of the first add_shortcode call, or ""
func DetectShortcode(code string) string {
	m := shortcodePattern.FindStringSubmatch(code)
	if m == nil {
		return ""
	}
	return m[1]
}

var (
	adminMarkers  = []string{"add_menu_page", "add_submenu_page", "add_options_page"}
	publicMarkers = []string{"add_shortcode", "wp_enqueue_style", "wp_enqueue_script"}
)

// HasAdminInterface reports whether code registers an admin screen
func HasAdminInterface(code string) bool {
	return containsAny(code, adminMarkers)
}

// HasPublicAssets reports whether code renders on the public site
func HasPublicAssets(code string) bool {
	return containsAny(code, publicMarkers)
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
