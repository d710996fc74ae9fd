// Package sqlite provides SQLite-backed persistence for generation units
// and chapter checkpoints, enabling interrupted runs to resume.
package sqlite
