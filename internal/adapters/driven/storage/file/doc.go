// Package file provides JSON file stores for the project dataset and the
// asset manifest. Every write goes to a temporary file in the target
// directory, is synced, and is renamed over the destination, so readers
// see either the previous file or the new one.
package file
