// Package sqlite provides the SQLite-backed document store. Vectors
// are stored as little-endian packed float32 blobs; the embeddings
// table cascades on document delete, and replaces run in a single
// transaction so readers never observe a half-replaced document.
package sqlite
