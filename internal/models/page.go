// Package models defines the domain types for docpages.
package models

import (
	"time"

	"gopkg.in/yaml.v3"
)

// PageDescriptor describes one routable content page of the site map.
type PageDescriptor struct {
	Title       string           `yaml:"title" json:"title"`
	Name        string           `yaml:"name" json:"name"`
	URL         string           `yaml:"url" json:"url"`
	Description string           `yaml:"description" json:"description"`
	ShowInMenu  bool             `yaml:"menu" json:"menu"`
	Children    []PageDescriptor `yaml:"childs" json:"childs,omitempty"`
}

// UnmarshalYAML decodes a descriptor, defaulting menu to true when omitted.
func (d *PageDescriptor) UnmarshalYAML(value *yaml.Node) error {
	type raw PageDescriptor
	out := raw{ShowInMenu: true}
	if err := value.Decode(&out); err != nil {
		return err
	}
	*d = PageDescriptor(out)
	return nil
}

// HeadingLink is one table-of-contents entry: an anchor id and its display text.
type HeadingLink struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Page is the output of the content pipeline for a single request.
type Page struct {
	Descriptor   PageDescriptor `json:"page"`
	HTML         string         `json:"html"`
	Headings     []HeadingLink  `json:"headings"`
	LastModified time.Time      `json:"last_modified"`
	Meta         map[string]any `json:"meta,omitempty"`
	NotFound     bool           `json:"not_found,omitempty"`
}

// SourceMetadata is a lightweight representation of a markdown source file.
type SourceMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
