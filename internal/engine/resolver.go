package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/rshade/wikilink/internal/engine/batch"
	"github.com/rshade/wikilink/internal/logging"
)

// ErrRemoteQuery indicates that the BindingSource failed for a batch.
// The run is aborted; records from earlier batches have already been written.
var ErrRemoteQuery = errors.New("remote query failed")

// ErrNilSource is returned when a Resolver is built without a BindingSource.
var ErrNilSource = errors.New("binding source cannot be nil")

// Options configures a Resolver.
type Options struct {
	// Property is the property identifier to resolve, e.g. "P245".
	Property string

	// BatchSize is the number of records per remote query. Zero means batch.DefaultBatchSize.
	BatchSize int

	// Pacer is consulted between batches. Nil disables pacing.
	Pacer batch.Pacer

	// Prefixes supplies base URLs for FullURL. Nil means DefaultPrefixes.
	Prefixes PrefixTable

	// OnProgress, if set, is called after every completed batch.
	OnProgress func(batch.ProgressSnapshot)
}

// Summary describes a finished (or aborted) run.
type Summary struct {
	Records int
	Matched int
	Batches int
}

// Resolver runs the batch-and-reconcile pipeline.
type Resolver struct {
	source    BindingSource
	processor *batch.Processor[InputRecord]
	property   string
	prefixes   PrefixTable
	onProgress func(batch.ProgressSnapshot)
}

// NewResolver validates opts and builds a Resolver backed by source.
func NewResolver(source BindingSource, opts Options) (*Resolver, error) {
	if source == nil {
		return nil, ErrNilSource
	}
	if opts.Property == "" {
		return nil, errors.New("property cannot be empty")
	}

	size := opts.BatchSize
	if size == 0 {
		size = batch.DefaultBatchSize
	}
	processor, err := batch.NewProcessor[InputRecord](size)
	if err != nil {
		return nil, err
	}
	processor.WithPacer(opts.Pacer)

	prefixes := opts.Prefixes
	if prefixes == nil {
		prefixes = DefaultPrefixes()
	}

	return &Resolver{
		source:     source,
		processor:  processor,
		property:   opts.Property,
		prefixes:   prefixes,
		onProgress: opts.OnProgress,
	}, nil
}

// Property returns the property identifier being resolved.
func (r *Resolver) Property() string {
	return r.property
}

// Resolve looks up the property for every record and writes one ResolvedRecord
// per input record to sink, in input order. It stops at the first lookup or
// sink error; the returned Summary covers what was written before the failure.
func (r *Resolver) Resolve(ctx context.Context, records []InputRecord, sink RecordSink) (Summary, error) {
	log := logging.ComponentLogger(*logging.FromContext(ctx), "engine")

	var summary Summary

	r.processor.WithProgressCallback(func(p *batch.Progress) {
		snap := p.Snapshot()
		log.Debug().Ctx(ctx).
			Int("batch", snap.ProcessedBatches).
			Int("batches", snap.TotalBatches).
			Int("records", snap.ProcessedItems).
			Float64("percent", snap.PercentComplete).
			Dur("eta", snap.EstimatedRemaining).
			Msg("batch resolved")
		if r.onProgress != nil {
			r.onProgress(snap)
		}
	})

	err := r.processor.Process(ctx, records, func(ctx context.Context, items []InputRecord, batchIndex int) error {
		codes := make([]string, len(items))
		for i, rec := range items {
			codes[i] = rec.EntityCode
		}

		bindings, err := r.source.LookupProperty(ctx, codes, r.property)
		if err != nil {
			log.Error().Ctx(ctx).Err(err).
				Int("batch", batchIndex).
				Int("codes", len(codes)).
				Str("property", r.property).
				Msg("property lookup failed")
			return fmt.Errorf("%w: %w", ErrRemoteQuery, err)
		}
		summary.Batches++

		for _, rec := range Reconcile(items, bindings, r.property, r.prefixes) {
			if err := sink.Write(rec); err != nil {
				return err
			}
			summary.Records++
			if rec.Matched() {
				summary.Matched++
			}
		}
		return nil
	})

	log.Info().Ctx(ctx).
		Str("property", r.property).
		Int("records", summary.Records).
		Int("matched", summary.Matched).
		Int("batches", summary.Batches).
		Msg("resolve finished")

	return summary, err
}

// Reconcile joins a batch of input records with the bindings returned for it.
// The result has one entry per record in the same order. When bindings holds
// several values for the same entity code, the last one wins.
func Reconcile(records []InputRecord, bindings []PropertyBinding, property string, prefixes PrefixTable) []ResolvedRecord {
	lookup := make(map[string]string, len(bindings))
	for _, b := range bindings {
		lookup[b.EntityCode] = b.PropertyValue
	}

	out := make([]ResolvedRecord, len(records))
	for i, rec := range records {
		resolved := ResolvedRecord{RecordID: rec.RecordID, EntityCode: rec.EntityCode}
		if value, ok := lookup[rec.EntityCode]; ok {
			resolved.PropertyURI = value
			resolved.FullURL = prefixes.FullURL(property, value)
		}
		out[i] = resolved
	}
	return out
}
