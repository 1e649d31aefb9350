// Package site loads and renders the static pages: the home anime catalog and
// the about page.
package site

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/charmbracelet/glamour"
	"gopkg.in/yaml.v3"
)

// Content file names within the content filesystem.
const (
	CatalogFile = "anime.yaml"
	AboutFile   = "about.md"
)

// Anime is one catalog entry.
type Anime struct {
	Title   string `yaml:"title"`
	Image   string `yaml:"image"`
	Summary string `yaml:"summary"`
	Link    string `yaml:"link"`
}

// Catalog is the home page listing.
type Catalog struct {
	Title string  `yaml:"title"`
	Anime []Anime `yaml:"anime"`
}

// LoadCatalog reads CatalogFile from fsys. Unknown keys are rejected.
func LoadCatalog(fsys fs.FS) (Catalog, error) {
	data, err := fs.ReadFile(fsys, CatalogFile)
	if err != nil {
		return Catalog{}, fmt.Errorf("site: reading %s: %w", CatalogFile, err)
	}
	var c Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return Catalog{}, fmt.Errorf("site: parsing %s: %w", CatalogFile, err)
	}
	for i, a := range c.Anime {
		if strings.TrimSpace(a.Title) == "" {
			return Catalog{}, fmt.Errorf("site: %s: entry %d has no title", CatalogFile, i+1)
		}
	}
	return c, nil
}

// Markdown renders the catalog as a Markdown document.
func (c Catalog) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", c.Title)
	for _, a := range c.Anime {
		fmt.Fprintf(&b, "\n## %s\n\n", a.Title)
		if a.Image != "" {
			fmt.Fprintf(&b, "![%s cover](%s)\n\n", a.Title, a.Image)
		}
		if a.Summary != "" {
			b.WriteString(strings.TrimSpace(a.Summary) + "\n\n")
		}
		if a.Link != "" {
			fmt.Fprintf(&b, "[Learn More](%s)\n", a.Link)
		}
	}
	return b.String()
}

// LoadAbout reads the about page Markdown from fsys.
func LoadAbout(fsys fs.FS) (string, error) {
	data, err := fs.ReadFile(fsys, AboutFile)
	if err != nil {
		return "", fmt.Errorf("site: reading %s: %w", AboutFile, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return "", errors.New("site: about page is empty")
	}
	return string(data), nil
}

// Render renders Markdown for a terminal of the given width. On renderer
// failure the source is returned unchanged.
func Render(markdown string, width int) string {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return markdown
	}
	out, err := r.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}

// Page names a static page.
type Page string

const (
	PageHome  Page = "home"
	PageAbout Page = "about"
)

// Markdown loads the Markdown source of page from fsys.
func Markdown(fsys fs.FS, page Page) (string, error) {
	switch page {
	case PageHome:
		c, err := LoadCatalog(fsys)
		if err != nil {
			return "", err
		}
		return c.Markdown(), nil
	case PageAbout:
		return LoadAbout(fsys)
	}
	return "", fmt.Errorf("site: unknown page %q", page)
}
