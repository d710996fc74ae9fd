// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Generator: Produces drafts, edits, and structured extractions
//   - Normaliser: Transforms raw material files into segmented documents
//   - EvidenceStore: Cached external-lookup persistence
//   - Renderer: Turns a VisualSpec into an artifact (cascade members)
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - SearchBackend: External evidence lookup. Without it, evidence comes
//     from local materials only.
//   - EmbeddingService: Generates vector embeddings. Without it, retrieval
//     is keyword-only.
//   - UnitStore / CheckpointStore: Resume support. Without them, every run
//     starts from scratch.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
