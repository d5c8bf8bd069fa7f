package blueprint

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/plugsmith/plugsmith/pkg/domain/types"
)

const (
	SchemaURL         = "https://playground.wordpress.net/blueprint-schema.json"
	PlaygroundBaseURL = "https://playground.wordpress.net/"
	DefaultLanding    = "/wp-admin/plugins.php"
)

// Blueprint is a WordPress Playground descriptor that boots a site with the plugin installed
type Blueprint struct {
	Schema              string            `json:"$schema"`
	LandingPage         string            `json:"landingPage"`
	PreferredVersions   PreferredVersions `json:"preferredVersions"`
	PHPExtensionBundles []string          `json:"phpExtensionBundles"`
	Features            Features          `json:"features"`
	Steps               []Step            `json:"steps"`
}

type PreferredVersions struct {
	PHP string `json:"php"`
	WP  string `json:"wp"`
}

type Features struct {
	Networking bool `json:"networking"`
}

// Step is one Playground setup step. Only the fields relevant to Step.Step are set.
type Step struct {
	Step       string         `json:"step"`
	Username   string         `json:"username,omitempty"`
	Password   string         `json:"password,omitempty"`
	PluginData *PluginData    `json:"pluginData,omitempty"`
	Options    *InstallOption `json:"options,omitempty"`
	Code       string         `json:"code,omitempty"`
}

type PluginData struct {
	Resource string `json:"resource"`
	URL      string `json:"url"`
}

type InstallOption struct {
	Activate bool `json:"activate"`
}

// New builds a blueprint that installs and activates the archive at zipURL.
// When shortcode is not empty a demo page embedding it is created and used as landing page.
func New(zipURL string, slug types.Slug, name, shortcode string) *Blueprint {
	bp := &Blueprint{
		Schema:      SchemaURL,
		LandingPage: DefaultLanding,
		PreferredVersions: PreferredVersions{
			PHP: "8.2",
			WP:  "latest",
		},
		PHPExtensionBundles: []string{"kitchen-sink"},
		Features:            Features{Networking: true},
		Steps: []Step{
			{Step: "login", Username: "admin", Password: "password"},
			{
				Step:       "installPlugin",
				PluginData: &PluginData{Resource: "url", URL: zipURL},
				Options:    &InstallOption{Activate: true},
			},
		},
	}

	if shortcode != "" {
		pageSlug := slug.String() + "-demo"
		bp.Steps = append(bp.Steps, Step{
			Step: "runPHP",
			Code: demoPageCode(slug, name, shortcode, pageSlug),
		})
		bp.LandingPage = "/" + pageSlug + "/"
	}

	return bp
}

func demoPageCode(slug types.Slug, name, shortcode, pageSlug string) string {
	return fmt.Sprintf(`<?php
require_once 'wordpress/wp-load.php';
$page_id = wp_insert_post(array(
    'post_title'   => '%s Demo',
    'post_name'    => '%s',
    'post_content' => '<h2>Plugin Demo Page</h2><p>This page demonstrates the plugin functionality.</p>[%s]',
    'post_status'  => 'publish',
    'post_type'    => 'page'
));

if ($page_id) {
    update_option('%s_demo_page_id', $page_id);
}
`, phpQuote(name), phpQuote(pageSlug), phpQuote(shortcode), slug.Prefix())
}

// phpQuote escapes s for a single-quoted PHP string literal
func phpQuote(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}

// Marshal encodes the blueprint as indented JSON
func (bp *Blueprint) Marshal() ([]byte, error) {
	raw, err := json.MarshalIndent(bp, "", "  ")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode blueprint")
	}
	return raw, nil
}

// PlaygroundURL returns a Playground link that loads the blueprint hosted at blueprintURL
func PlaygroundURL(blueprintURL string) string {
	q := url.Values{}
	q.Set("blueprint-url", blueprintURL)
	return PlaygroundBaseURL + "?" + q.Encode()
}

// InlineURL returns a Playground link carrying the blueprint itself in the URL fragment
func InlineURL(bp *Blueprint) (string, error) {
	raw, err := json.Marshal(bp)
	if err != nil {
		return "", goerr.Wrap(err, "failed to encode blueprint")
	}
	return PlaygroundBaseURL + "#" + base64.StdEncoding.EncodeToString(raw), nil
}
