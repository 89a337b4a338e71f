// Package rag implements the multi-source context-fusion engine.
//
// The engine answers a user's question by fusing evidence from several
// independently persisted knowledge partitions before invoking a language
// model, then records the exchange as new retrievable evidence.
//
// # Architecture
//
// Request flow through the engine:
//
//	caller
//	   |
//	   v
//	Selector ---- role policy decides which partitions are in scope
//	   |
//	   v
//	Retriever --- one concurrent similarity query per partition,
//	   |          per-source quota and timeout, hard fragment ceiling
//	   v
//	Compose ----- grouped, labeled, truncated prompt sections
//	   |
//	   v
//	Generator --- opaque prompt-to-text capability (fatal on failure)
//	   |
//	   v
//	history ----- per-user sequential background persistence
//	              (best effort, never fails the answer)
//
// # Partitions
//
// Five partition kinds exist: per-user documents, the shared knowledge
// base, the business data mart, one collection per role, and per-user
// conversation history. Partition identity derives deterministically
// from the owner key via SanitizeCollectionName, which always yields a
// name the vector store accepts.
//
// # Failure policy
//
// A partition whose store is unreachable, empty, or slow degrades to
// zero fragments from that source; retrieval proceeds with whatever the
// remaining sources return. Only a generation failure is fatal to the
// request. Conversation persistence failures are logged and swallowed,
// the response having already been produced.
package rag
