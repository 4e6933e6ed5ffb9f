// Package site holds the static content of the code and audio pages: the
// project list and the Spotify embeds. Content is read from a YAML file
// when one is configured and from the built-in defaults otherwise.
package site

import (
	_ "embed"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jcolasacco/folio/pkg/errors"
)

//go:embed content.yaml
var defaultContent []byte

// Project is one card on the code page.
type Project struct {
	Title string   `yaml:"title" json:"title"`
	Blurb string   `yaml:"blurb" json:"blurb"`
	Href  string   `yaml:"href,omitempty" json:"href,omitempty"`
	Tags  []string `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// Embed is a Spotify player shown on the audio page.
type Embed struct {
	Title string `yaml:"title" json:"title"`
	URL   string `yaml:"url" json:"url"`
}

// Content is everything the static pages render.
type Content struct {
	Projects []Project `yaml:"projects" json:"projects"`
	Spotify  []Embed   `yaml:"spotify" json:"spotify"`
}

// Default returns the built-in content.
func Default() Content {
	c, err := Parse(defaultContent)
	if err != nil {
		panic("site: bad built-in content: " + err.Error())
	}
	return c
}

// Load reads content from path, or returns Default when path is empty.
func Load(path string) (Content, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Content{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "content file %s", path)
		}
		return Content{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read content file")
	}
	return Parse(data)
}

// Parse decodes YAML content and validates it.
func Parse(data []byte) (Content, error) {
	var c Content
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Content{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse content")
	}
	if err := c.Validate(); err != nil {
		return Content{}, err
	}
	return c, nil
}

// Validate requires a title on every project and a title and URL on every
// embed.
func (c Content) Validate() error {
	for i, p := range c.Projects {
		if p.Title == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "project %d has no title", i+1)
		}
	}
	for i, e := range c.Spotify {
		if e.Title == "" || e.URL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "spotify embed %d needs a title and url", i+1)
		}
	}
	return nil
}
