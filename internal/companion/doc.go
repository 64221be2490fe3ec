// Package companion implements the context-aware conversation engine at the
// heart of the reading companion.
//
// The engine decides, per user turn, how to ground the model's answer in the
// document being read: inject currently visible page text, retrieve the best
// matching page for a derived query, or inject nothing at all. It owns the
// conversation state that makes those decisions sound across turns: the
// ordered message history sent to the model, a plain-text transcript mirror
// used only as classifier input, and the set of pages whose text has already
// been injected (never injected twice in one conversation).
//
// Collaborators are consumer-defined interfaces: Completer (the LLM),
// PageProvider (page text and the visible-page set) and Retriever (best-match
// page lookup). Implementations live in internal/completion, internal/page
// and internal/retrieval.
package companion
