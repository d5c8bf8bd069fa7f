package plugin

import (
	"bytes"
	"embed"
	"encoding/json"
	"strings"
	"text/template"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/plugsmith/plugsmith/pkg/domain/model"
	"github.com/plugsmith/plugsmith/pkg/domain/types"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// PlaceholderDirs receive an index.php that blocks directory listing
var PlaceholderDirs = []string{
	"admin",
	"admin/css",
	"admin/js",
	"public",
	"public/css",
	"public/js",
	"includes",
}

// Asset paths emitted when the corresponding markers are present
const (
	AdminStylePath   = "admin/css/admin-style.css"
	AdminScriptPath  = "admin/js/admin-script.js"
	PublicStylePath  = "public/css/public-style.css"
	PublicScriptPath = "public/js/public-script.js"
	ManifestPath     = "plugin.json"
)

// Assembler turns generated plugin code into a complete bundle
type Assembler struct {
	now func() time.Time
}

// AssemblerOption configures an Assembler
type AssemblerOption func(*Assembler)

// WithClock sets the clock used for the license copyright year
func WithClock(now func() time.Time) AssemblerOption {
	return func(a *Assembler) {
		a.now = now
	}
}

// NewAssembler creates an Assembler using the wall clock by default
func NewAssembler(opts ...AssemblerOption) *Assembler {
	a := &Assembler{now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type templateData struct {
	Name        string
	Slug        string
	Prefix      string
	FuncSuffix  string
	Description string
	Version     string
	Author      string
	Contributor string
	Year        int
	Request     string
	Shortcode   string
	HasAdmin    bool
}

type manifest struct {
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Author      string   `json:"author"`
	Request     string   `json:"request"`
	Shortcode   string   `json:"shortcode,omitempty"`
	Features    []string `json:"features"`
}

// Assemble builds the bundle for code generated from userRequest. File content
// depends only on the extracted metadata, the request and the clock's year.
func (a *Assembler) Assemble(code, userRequest string) (*model.Bundle, error) {
	meta := ExtractMetadata(code)
	slug := Slugify(meta.Name)
	hasAdmin := HasAdminInterface(code)
	hasPublic := HasPublicAssets(code)

	data := templateData{
		Name:        meta.Name,
		Slug:        slug.String(),
		Prefix:      slug.Prefix(),
		FuncSuffix:  camelCase(slug),
		Description: meta.Description,
		Version:     meta.Version,
		Author:      meta.Author,
		Contributor: strings.Join(strings.Fields(strings.ToLower(meta.Author)), ""),
		Year:        a.now().Year(),
		Request:     strings.Join(strings.Fields(userRequest), " "),
		Shortcode:   DetectShortcode(code),
		HasAdmin:    hasAdmin,
	}

	b := &bundleBuilder{}
	b.add(slug.String()+".php", code, types.FileTypePHP)
	b.render("readme.txt", "readme.txt.tmpl", data, types.FileTypeTxt)
	b.render("uninstall.php", "uninstall.php.tmpl", data, types.FileTypePHP)
	b.render("LICENSE.txt", "license.txt.tmpl", data, types.FileTypeTxt)
	b.manifest(data, hasAdmin, hasPublic)
	if hasAdmin {
		b.render(AdminStylePath, "admin-style.css.tmpl", data, types.FileTypeCSS)
		b.render(AdminScriptPath, "admin-script.js.tmpl", data, types.FileTypeJS)
	}
	if hasPublic {
		b.render(PublicStylePath, "public-style.css.tmpl", data, types.FileTypeCSS)
		b.render(PublicScriptPath, "public-script.js.tmpl", data, types.FileTypeJS)
	}
	b.render("README.md", "readme.md.tmpl", data, types.FileTypeMD)
	b.render(".gitignore", "gitignore.tmpl", data, types.FileTypeTxt)
	for _, dir := range PlaceholderDirs {
		b.render(dir+"/index.php", "index.php.tmpl", data, types.FileTypePHP)
	}

	if b.err != nil {
		return nil, b.err
	}

	bundle := &model.Bundle{
		Slug:     slug,
		Name:     meta.Name,
		Metadata: meta,
		Files:    b.files,
	}
	if err := bundle.Validate(); err != nil {
		return nil, goerr.Wrap(err, "assembled bundle is invalid", goerr.V(model.SlugKey, slug))
	}
	return bundle, nil
}

// Assemble builds a bundle with a wall-clock Assembler
func Assemble(code, userRequest string) (*model.Bundle, error) {
	return NewAssembler().Assemble(code, userRequest)
}

type bundleBuilder struct {
	files []*model.ArtifactFile
	err   error
}

func (b *bundleBuilder) add(path, content string, fileType types.FileType) {
	b.files = append(b.files, &model.ArtifactFile{Path: path, Content: content, Type: fileType})
}

func (b *bundleBuilder) render(path, name string, data templateData, fileType types.FileType) {
	if b.err != nil {
		return
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		b.err = goerr.Wrap(err, "failed to render plugin template", goerr.V("template", name))
		return
	}
	b.add(path, buf.String(), fileType)
}

func (b *bundleBuilder) manifest(data templateData, hasAdmin, hasPublic bool) {
	if b.err != nil {
		return
	}

	features := []string{}
	if hasAdmin {
		features = append(features, "admin")
	}
	if hasPublic {
		features = append(features, "public")
	}
	if data.Shortcode != "" {
		features = append(features, "shortcode")
	}

	raw, err := json.MarshalIndent(manifest{
		Name:        data.Name,
		Slug:        data.Slug,
		Version:     data.Version,
		Description: data.Description,
		Author:      data.Author,
		Request:     data.Request,
		Shortcode:   data.Shortcode,
		Features:    features,
	}, "", "  ")
	if err != nil {
		b.err = goerr.Wrap(err, "failed to encode plugin manifest")
		return
	}
	b.add(ManifestPath, string(raw)+"\n", types.FileTypeJSON)
}

func camelCase(slug types.Slug) string {
	var sb strings.Builder
	for _, part := range strings.Split(slug.String(), "-") {
		if part == "" {
			continue
		}
		sb.WriteString(strings.ToUpper(part[:1]))
		sb.WriteString(part[1:])
	}
	return sb.String()
}
