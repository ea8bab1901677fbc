package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"nobounce_admin/internal/app"
)

// manifest is the importer input:
//
//	courts:
//	  - name: Central Park
//	    city: Lisbon
//	    latitude: 38.72
//	    images: [photos/cp-1.jpg, photos/cp-2.png]
//	    rating: {overall: 8.5, rim: 7}
type manifest struct {
	Courts []manifestCourt `yaml:"courts"`
}

type manifestCourt struct {
	Name         string          `yaml:"name"`
	Address      string          `yaml:"address"`
	City         string          `yaml:"city"`
	District     string          `yaml:"district"`
	Latitude     string          `yaml:"latitude"`
	Longitude    string          `yaml:"longitude"`
	InstagramURL string          `yaml:"instagram_url"`
	TikTokURL    string          `yaml:"tiktok_url"`
	Images       []string        `yaml:"images"`
	Rating       *manifestRating `yaml:"rating"`
}

type manifestRating struct {
	Source       string `yaml:"source"`
	Overall      string `yaml:"overall"`
	Rim          string `yaml:"rim"`
	Floor        string `yaml:"floor"`
	CourtSpacing string `yaml:"court_spacing"`
	Bench        string `yaml:"bench"`
	Water        string `yaml:"water"`
	Backboard    string `yaml:"backboard"`
}

func loadManifest(path string) ([]app.ImportEntry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseManifest(b, filepath.Dir(path))
}

// parseManifest resolves relative image paths against dir.
func parseManifest(b []byte, dir string) ([]app.ImportEntry, error) {
	var m manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	out := make([]app.ImportEntry, 0, len(m.Courts))
	for _, c := range m.Courts {
		e := app.ImportEntry{Court: app.CourtForm{
			Name:         c.Name,
			Address:      c.Address,
			City:         c.City,
			District:     c.District,
			Latitude:     c.Latitude,
			Longitude:    c.Longitude,
			InstagramURL: c.InstagramURL,
			TikTokURL:    c.TikTokURL,
		}}
		for _, p := range c.Images {
			if !filepath.IsAbs(p) {
				p = filepath.Join(dir, p)
			}
			e.Images = append(e.Images, p)
		}
		if r := c.Rating; r != nil {
			e.Rating = &app.RatingForm{
				Source:       r.Source,
				Overall:      r.Overall,
				Rim:          r.Rim,
				Floor:        r.Floor,
				CourtSpacing: r.CourtSpacing,
				Bench:        r.Bench,
				Water:        r.Water,
				Backboard:    r.Backboard,
			}
		}
		out = append(out, e)
	}
	return out, nil
}
