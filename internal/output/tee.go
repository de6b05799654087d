package output

import "github.com/rshade/wikilink/internal/engine"

// Tee forwards each record to every sink in order, stopping at the first error.
type Tee []engine.RecordSink

// Write forwards rec.
func (t Tee) Write(rec engine.ResolvedRecord) error {
	for _, s := range t {
		if err := s.Write(rec); err != nil {
			return err
		}
	}
	return nil
}
