package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Theme describes one display theme in the catalog.
type Theme struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// ThemeCatalog is the set of themes stored in config/themes.yaml.
type ThemeCatalog struct {
	Themes map[string]Theme `yaml:"themes"`
}

// DefaultThemes returns the built-in theme catalog.
func DefaultThemes() *ThemeCatalog {
	return &ThemeCatalog{Themes: map[string]Theme{
		"brite":     {Name: "Brite", Description: "Clean and bright design"},
		"cerulean":  {Name: "Cerulean", Description: "A calm blue sky"},
		"cosmo":     {Name: "Cosmo", Description: "An ode to Metro"},
		"cyborg":    {Name: "Cyborg", Description: "Jet black and electric blue"},
		"darkly":    {Name: "Darkly", Description: "Flatly in night mode"},
		"flatly":    {Name: "Flatly", Description: "Flat and modern"},
		"journal":   {Name: "Journal", Description: "Crisp like a new sheet of paper"},
		"litera":    {Name: "Litera", Description: "The medium is the message"},
		"lumen":     {Name: "Lumen", Description: "Light and shadow"},
		"lux":       {Name: "Lux", Description: "A touch of class"},
		"materia":   {Name: "Materia", Description: "Material is the metaphor"},
		"minty":     {Name: "Minty", Description: "A fresh feel"},
		"morph":     {Name: "Morph", Description: "A modern take"},
		"pulse":     {Name: "Pulse", Description: "A trace of purple"},
		"quartz":    {Name: "Quartz", Description: "A gem of a theme"},
		"sandstone": {Name: "Sandstone", Description: "A touch of warmth"},
		"simplex":   {Name: "Simplex", Description: "Mini and minimalist"},
		"sketchy":   {Name: "Sketchy", Description: "A hand-drawn look"},
		"slate":     {Name: "Slate", Description: "Shades of gunmetal gray"},
		"solar":     {Name: "Solar", Description: "A spin on Solarized"},
		"spacelab":  {Name: "Spacelab", Description: "Silvery and sleek"},
		"superhero": {Name: "Superhero", Description: "The brave and the blue"},
		"united":    {Name: "United", Description: "Ubuntu orange and unique font"},
		"vapor":     {Name: "Vapor", Description: "A subtle theme"},
		"yeti":      {Name: "Yeti", Description: "A friendly foundation"},
		"zephyr":    {Name: "Zephyr", Description: "Breezy and beautiful"},
	}}
}

// LoadThemes reads the theme catalog, writing the built-in catalog first if
// the file doesn't exist yet.
func LoadThemes(path string) (*ThemeCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			catalog := DefaultThemes()
			if err := catalog.Save(path); err != nil {
				return nil, err
			}
			return catalog, nil
		}
		return nil, fmt.Errorf("failed to read themes file: %w", err)
	}

	catalog := &ThemeCatalog{}
	if err := yaml.Unmarshal(data, catalog); err != nil {
		return nil, fmt.Errorf("failed to parse themes file: %w", err)
	}
	if catalog.Themes == nil {
		catalog.Themes = make(map[string]Theme)
	}

	return catalog, nil
}

// Save persists the catalog to the given path.
func (c *ThemeCatalog) Save(path string) error {
	return writeYAML(path, c)
}

// Has reports whether a theme key exists in the catalog.
func (c *ThemeCatalog) Has(key string) bool {
	_, ok := c.Themes[key]
	return ok
}

// Keys returns the sorted theme keys.
func (c *ThemeCatalog) Keys() []string {
	keys := make([]string, 0, len(c.Themes))
	for k := range c.Themes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
