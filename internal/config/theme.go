package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// ColorScheme defines the colors used when rendering boards and cards in
// the terminal
type ColorScheme struct {
	// Preset name (e.g., "default", "monochrome")
	Preset string `yaml:"preset"`

	// Primary accent color (used for titles and highlights)
	Accent string `yaml:"accent"`

	ColumnBorder string `yaml:"column_border"`
	CardBorder   string `yaml:"card_border"`

	// Text colors
	Title  string `yaml:"title"`
	Subtle string `yaml:"subtle"` // Muted/placeholder text
	Normal string `yaml:"normal"`

	// Notification colors (foreground/background pairs)
	InfoFg    string `yaml:"info_fg"`
	InfoBg    string `yaml:"info_bg"`
	WarningFg string `yaml:"warning_fg"`
	WarningBg string `yaml:"warning_bg"`
	ErrorFg   string `yaml:"error_fg"`
	ErrorBg   string `yaml:"error_bg"`
}

// DefaultColorScheme returns the default color scheme (purple theme)
func DefaultColorScheme() ColorScheme {
	return ColorScheme{
		Preset:       "default",
		Accent:       "#874BFD",
		ColumnBorder: "#5F87D7",
		CardBorder:   "#585858",
		Title:        "#D75FD7",
		Subtle:       "#585858",
		Normal:       "#D0D0D0",
		InfoFg:       "#00AFFF",
		InfoBg:       "#00005F",
		WarningFg:    "#FFD700",
		WarningBg:    "#875F00",
		ErrorFg:      "#FF0000",
		ErrorBg:      "#5F0000",
	}
}

// MonochromeColorScheme returns a black and white color scheme
func MonochromeColorScheme() ColorScheme {
	return ColorScheme{
		Preset:       "monochrome",
		Accent:       "#FFFFFF",
		ColumnBorder: "#BCBCBC",
		CardBorder:   "#808080",
		Title:        "#FFFFFF",
		Subtle:       "#808080",
		Normal:       "#D0D0D0",
		InfoFg:       "#FFFFFF",
		InfoBg:       "#303030",
		WarningFg:    "#FFFFFF",
		WarningBg:    "#4E4E4E",
		ErrorFg:      "#000000",
		ErrorBg:      "#FFFFFF",
	}
}

// preset returns a preset color scheme by name
func preset(name string) ColorScheme {
	if name == "monochrome" {
		return MonochromeColorScheme()
	}
	return DefaultColorScheme()
}

// ApplyDefaults fills in missing color values from the preset
func (c *ColorScheme) ApplyDefaults() {
	c.MergeFrom(preset(c.Preset))
	if c.Preset == "" {
		c.Preset = "default"
	}
}

// MergeFrom copies every color of other that c leaves empty
func (c *ColorScheme) MergeFrom(other ColorScheme) {
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&c.Accent, other.Accent)
	fill(&c.ColumnBorder, other.ColumnBorder)
	fill(&c.CardBorder, other.CardBorder)
	fill(&c.Title, other.Title)
	fill(&c.Subtle, other.Subtle)
	fill(&c.Normal, other.Normal)
	fill(&c.InfoFg, other.InfoFg)
	fill(&c.InfoBg, other.InfoBg)
	fill(&c.WarningFg, other.WarningFg)
	fill(&c.WarningBg, other.WarningBg)
	fill(&c.ErrorFg, other.ErrorFg)
	fill(&c.ErrorBg, other.ErrorBg)
}

// loadThemeFile merges the theme from TABLERO_THEME_FILE when set. Values
// in the main config win.
func loadThemeFile(config *Config) {
	themeFile := os.Getenv("TABLERO_THEME_FILE")
	if themeFile == "" {
		return
	}

	themeData, err := os.ReadFile(themeFile)
	if err != nil {
		return
	}

	var themeConfig struct {
		Theme ColorScheme `yaml:"theme"`
	}

	if yaml.Unmarshal(themeData, &themeConfig) == nil {
		if config.Theme.Preset == "" {
			config.Theme.Preset = themeConfig.Theme.Preset
		}
		config.Theme.MergeFrom(themeConfig.Theme)
	}
}
