// Package services implements the driving ports of the gallery.
//
// Pipeline turns the organisation listing into the dataset, AssetService
// mirrors the assets that dataset references, and StatusService reports
// on what was persisted. They talk to GitHub, storage and the filesystem
// only through the driven ports.
package services
