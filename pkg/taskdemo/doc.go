// Package taskdemo exercises pkg/core/taskgraph against two small,
// realistic task graphs built on real storage and indexing backends: a
// block-anonymization pipeline (split -> XOR-anonymize -> store, fanned
// in with WhenAll) and a directory-indexing pipeline (per-file stat and
// digest, fanned in and written to a bleve index) — grounded on
// NoiseFS's pkg/storage (backend selection) and pkg/search (index
// mapping) packages, minus the coupling to their full storage.Manager
// and descriptor subsystems.
package taskdemo
