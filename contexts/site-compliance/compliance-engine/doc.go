// Package complianceengine implements the collection-site compliance engine
// inside the site-compliance context.
//
// The module computes population-tiered site requirements, evaluates each
// municipality against its active site inventory, and owns the offset, event
// and reallocation ledgers that adjust those requirements over time. Ledger
// writes are serialized per municipality and emit outbox events that the worker
// relays to the message bus.
package complianceengine
