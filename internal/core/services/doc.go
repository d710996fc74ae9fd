// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go: ingestion, retrieval scoring, evidence caching,
// quality scoring, the render cascade, and the generation pipeline all
// live here, behind ports implemented by adapters.
package services
