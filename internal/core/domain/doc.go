// Package domain defines the core business entities for Draftmill.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A loaded source material file
//   - Chunk: A retrievable evidence unit within a document
//   - EvidenceRecord: A cached external-lookup result
//   - VisualSpec: A declarative chart description
//   - GenerationUnit: One leaf writing unit of the report
//   - Outline: The hierarchical writing plan
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
