// Package file provides TOML-backed configuration storage and the
// settings loader that folds the store into domain.Settings.
package file
