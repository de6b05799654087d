package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/rshade/wikilink/internal/engine/batch"
	"github.com/rshade/wikilink/internal/output"
)

const progressBarWidth = 40

// batchProgress renders a progress bar line per finished batch.
type batchProgress struct {
	w   io.Writer
	bar progress.Model
}

// newBatchProgress returns a progress callback writing to w, or nil when w is
// not a terminal.
func newBatchProgress(w io.Writer) func(batch.ProgressSnapshot) {
	if !output.IsTerminal(w) {
		return nil
	}
	bp := &batchProgress{
		w:   w,
		bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(progressBarWidth)),
	}
	return bp.update
}

func (bp *batchProgress) update(snap batch.ProgressSnapshot) {
	_, _ = fmt.Fprintln(bp.w, bp.line(snap))
}

func (bp *batchProgress) line(snap batch.ProgressSnapshot) string {
	line := fmt.Sprintf("%s  batch %d/%d", bp.bar.ViewAs(snap.PercentComplete/100),
		snap.ProcessedBatches, snap.TotalBatches)
	if !snap.IsComplete() && snap.EstimatedRemaining > 0 {
		line += fmt.Sprintf(", ~%s left", snap.EstimatedRemaining.Round(100*time.Millisecond))
	}
	return line
}
