package config

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// YearProfile holds the per-year settings of a wrapped edition: where its
// media lives and how attachments are classified.
// yaml tags tell the parser how to map the YAML fields to the struct
type YearProfile struct {
	Year                int      `yaml:"year"`
	AvatarURL           string   `yaml:"avatar_url"`
	AttachmentURL       string   `yaml:"attachment_url"`
	EmojiURL            string   `yaml:"emoji_url"`
	ExcludedExtensions  []string `yaml:"excluded_extensions"`
	VideoExtensions     []string `yaml:"video_extensions"`
	NotableContentLimit int      `yaml:"notable_content_limit,omitempty"`
}

// DefaultNotableContentLimit is used when a profile does not set one.
const DefaultNotableContentLimit = 20

// Validate checks that the profile is usable and fills defaults.
func (p *YearProfile) Validate() error {
	if p.Year <= 0 {
		return fmt.Errorf("profile validation failed: year is required")
	}
	if p.AvatarURL == "" {
		return fmt.Errorf("profile validation failed: avatar_url is required")
	}
	if p.AttachmentURL == "" {
		return fmt.Errorf("profile validation failed: attachment_url is required")
	}
	if p.EmojiURL == "" {
		return fmt.Errorf("profile validation failed: emoji_url is required")
	}
	if p.NotableContentLimit < 0 {
		return fmt.Errorf("profile validation failed: notable_content_limit must not be negative")
	}
	if p.NotableContentLimit == 0 {
		p.NotableContentLimit = DefaultNotableContentLimit
	}
	p.ExcludedExtensions = normalizeExtensions(p.ExcludedExtensions)
	p.VideoExtensions = normalizeExtensions(p.VideoExtensions)
	return nil
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

// Profiles holds the loaded year profiles.
type Profiles struct {
	byYear map[int]YearProfile
}

// NewProfiles builds a Profiles set from already constructed profiles.
func NewProfiles(profiles ...YearProfile) (*Profiles, error) {
	byYear := make(map[int]YearProfile, len(profiles))
	for _, p := range profiles {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, exists := byYear[p.Year]; exists {
			return nil, fmt.Errorf("duplicate year %d", p.Year)
		}
		byYear[p.Year] = p
	}
	return &Profiles{byYear: byYear}, nil
}

// LoadProfiles recursively scans a directory for YAML files, loads them,
// validates them and returns the resulting set.
func LoadProfiles(dir string) (*Profiles, error) {
	byYear := make(map[int]YearProfile)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || (filepath.Ext(d.Name()) != ".yaml" && filepath.Ext(d.Name()) != ".yml") {
			return nil
		}

		slog.Info("Loading year profile", "file", path)

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read profile %s: %w", path, err)
		}

		var profile YearProfile
		if err := yaml.Unmarshal(data, &profile); err != nil {
			return fmt.Errorf("failed to parse YAML for %s: %w", path, err)
		}

		if err := profile.Validate(); err != nil {
			return fmt.Errorf("validation failed for %s: %w", path, err)
		}

		if _, exists := byYear[profile.Year]; exists {
			return fmt.Errorf("duplicate year %d found in %s", profile.Year, path)
		}

		byYear[profile.Year] = profile
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("error walking profile directory %s: %w", dir, err)
	}

	if len(byYear) == 0 {
		slog.Warn("No year profiles were loaded.", "path", dir)
	}

	return &Profiles{byYear: byYear}, nil
}

// Get retrieves the profile for a year.
func (p *Profiles) Get(year int) (YearProfile, bool) {
	profile, ok := p.byYear[year]
	return profile, ok
}

// Years lists the configured years in ascending order.
func (p *Profiles) Years() []int {
	years := make([]int, 0, len(p.byYear))
	for y := range p.byYear {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}
