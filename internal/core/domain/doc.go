// Package domain contains the core business entities and pure logic for
// the askme knowledge base: documents, semantic chunks, embeddings,
// query expansions, retrieval results and context configuration.
//
// The domain layer has no dependencies on adapters or infrastructure.
package domain
