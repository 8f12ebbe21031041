// Package file loads the gallery configuration from a TOML file.
// Any key left out of the file keeps its default; a missing file means
// all defaults.
package file
