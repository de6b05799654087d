package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/rshade/wikilink/internal/engine"
)

// NotFoundMarker is printed for records without a property value.
const NotFoundMarker = "No property found"

// Colors used for the transcript when writing to a terminal.
const (
	ColorID       = lipgloss.Color("245")
	ColorValue    = lipgloss.Color("86")
	ColorURL      = lipgloss.Color("39")
	ColorNotFound = lipgloss.Color("208")
)

// Transcript prints one human-readable line per resolved record.
type Transcript struct {
	w      io.Writer
	styled bool

	idStyle       lipgloss.Style
	valueStyle    lipgloss.Style
	urlStyle      lipgloss.Style
	notFoundStyle lipgloss.Style
}

// NewTranscript returns a transcript writing to w. When styled is true lines
// are colored for terminal display.
func NewTranscript(w io.Writer, styled bool) *Transcript {
	r := lipgloss.NewRenderer(w)
	return &Transcript{
		w:             w,
		styled:        styled,
		idStyle:       r.NewStyle().Foreground(ColorID),
		valueStyle:    r.NewStyle().Foreground(ColorValue).Bold(true),
		urlStyle:      r.NewStyle().Foreground(ColorURL).Underline(true),
		notFoundStyle: r.NewStyle().Foreground(ColorNotFound).Italic(true),
	}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Write prints the line for rec.
func (t *Transcript) Write(rec engine.ResolvedRecord) error {
	if _, err := fmt.Fprintln(t.w, t.Line(rec)); err != nil {
		return fmt.Errorf("writing transcript: %w", err)
	}
	return nil
}

// Line formats rec as "<id> (<code>): <uri> -> <url>" or
// "<id> (<code>): No property found".
func (t *Transcript) Line(rec engine.ResolvedRecord) string {
	prefix := fmt.Sprintf("%s (%s):", rec.RecordID, rec.EntityCode)
	if !rec.Matched() {
		return prefix + " " + t.render(t.notFoundStyle, NotFoundMarker)
	}
	return fmt.Sprintf("%s %s -> %s",
		t.render(t.idStyle, prefix),
		t.render(t.valueStyle, rec.PropertyURI),
		t.render(t.urlStyle, rec.FullURL))
}

func (t *Transcript) render(style lipgloss.Style, s string) string {
	if !t.styled || s == "" {
		return s
	}
	return style.Render(s)
}
