// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): storage, embedding, the generative model,
// document sources and conversation history.
package driven
