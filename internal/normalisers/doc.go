// Package normalisers provides implementations of the Normaliser interface
// for the material formats the ingester accepts. Each normaliser knows how
// to extract text and structural segments from specific file extensions.
//
// Normalisers are registered with the Registry at startup.
package normalisers
