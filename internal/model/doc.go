// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
//
// The package defines three entities:
//
//   - Message: one turn in a conversation, authored by the user or the
//     assistant, with optional citations on assistant turns.
//   - Citation: a structured source reference (document, page, language,
//     excerpt) attached to an assistant message.
//   - ChatSession: a conversation summary (ID, derived name, path) as it
//     appears in the persisted session registry.
//
// The JSON encoding of these types is both the persisted format and, for
// citations, the answering service's wire format, so field names must not
// change without a migration.
package model
