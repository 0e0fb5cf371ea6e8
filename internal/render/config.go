package render

import (
	"os"

	"github.com/diogo/quizbot/internal/config"
)

// OptionsFromConfig builds render options from the markdown section of the
// user configuration. GLAMOUR_STYLE wins over the configured style.
func OptionsFromConfig(cfg config.Config, width int) Options {
	opts := Options{
		Width:            width,
		Style:            cfg.Markdown.Style,
		EnableEmoji:      cfg.Markdown.EnableEmoji,
		PreserveNewLines: cfg.Markdown.PreserveNewLines,
	}
	if opts.Style == "" {
		opts.Style = config.DefaultMarkdownConfig().Style
	}
	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		opts.Style = style
	}
	return opts
}
