// Package wateruse implements the water-use QA pipeline: it converts raw
// heterogeneous meter readings into a common volume unit (cubic metres),
// summarises and removes negative readings, flags statistical spikes, and
// rolls the cleaned series up into daily and monthly statistics plus a
// gap-filled daily series suitable for plotting.
//
// The pipeline is a pure batch transform: entities are derived once from an
// immutable extraction and never mutated afterwards, so re-running on
// identical input yields identical tables.
package wateruse
