// Package batch splits an ordered slice into contiguous fixed-size batches and
// hands them to a callback one at a time.
//
// Batches are processed strictly in order. An optional Pacer is consulted
// between consecutive batches (never after the last one), which is how the
// resolver spaces out requests to rate-limited endpoints. Processing stops at
// the first callback error.
package batch
