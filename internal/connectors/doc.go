// Package connectors provides document source implementations. A
// connector knows how to enumerate, read and watch documents for a
// specific kind of source; the filesystem connector is the only one
// the knowledge base currently uses.
package connectors
