// Package ingestion moves tabular files through the raw, normalized and
// enrichment layers.
//
// The Ingestor fingerprints each canonical row and stores the rows not seen
// before. The Normalizer maps every raw record lacking a normalized record
// onto the canonical schema through the field map. The Enricher derives an
// annotation for every normalized record lacking one, fanning derivations
// out to a bounded worker pool.
//
// Each stage is an idempotent full pass over its backlog, so re-running a
// stage never duplicates records. A stage that stops early returns a
// *StageError naming the stage and the counts it reached.
package ingestion
