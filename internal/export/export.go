// Package export renders scan results as Markdown, JSON or HTML documents.
package export

import (
	"fmt"
	"strings"

	"github.com/devdiary/devdiary/internal/domain"
	"github.com/devdiary/devdiary/internal/port"
)

// Format identifies an export rendering.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
)

// Options selects which sections an export includes.
type Options struct {
	Format         Format
	IncludeBullets bool
	IncludeStandup bool
	IncludeTeam    bool
	IncludeStats   bool
	IncludeCommits bool
}

// DefaultOptions mirror a standup-style report: bullets and paragraphs in,
// raw statistics out.
func DefaultOptions(format Format) Options {
	return Options{
		Format:         format,
		IncludeBullets: true,
		IncludeStandup: true,
		IncludeTeam:    true,
	}
}

// ParseFormat maps a CLI string onto a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "html", "htm":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("%w: %s", port.ErrUnsupportedForm, s)
}

// Extension returns the file extension for a format, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatHTML:
		return "html"
	default:
		return "md"
	}
}

// Render produces the document for a scan result in the requested format.
func Render(result *domain.ScanResult, opts Options) (string, error) {
	switch opts.Format {
	case FormatMarkdown:
		return Markdown(result, opts), nil
	case FormatJSON:
		return JSON(result, opts)
	case FormatHTML:
		return HTML(result, opts), nil
	}
	return "", fmt.Errorf("%w: %s", port.ErrUnsupportedForm, opts.Format)
}
