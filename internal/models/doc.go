// package models defines the domain types for the collection ingestion pipeline.
//
// The core types are:
//   - [Album] : a persisted collection record resolved from a barcode
//   - [Track] : one entry of an album's resolved track listing
//   - [ScanEvent] : an ephemeral decoded-barcode event from the scanner
//   - [Credential] : the catalog access token with its expiry instant
package models
