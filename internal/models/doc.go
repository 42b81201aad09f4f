// Package models defines the core domain models for Finbook.
//
// # Models
//
//   - User: a registered account; the owner key for all per-user rows
//   - Record: a single financial entry (expense or income) owned by one user
//   - Category: a named, owner-scoped classification for records
//   - IdempotencyEntry: one fan-out attempt in the idempotency ledger
//   - SplitRequest / SplitResult: input and output of the split fan-out engine
//
// # Design Principles
//
//  1. **Owner scoping**: every Record and Category carries an OwnerID; ownership
//     is the sole multi-tenancy mechanism, there is no per-tenant storage.
//  2. **Integer cents**: monetary amounts are stored as signed int64 cents so
//     split arithmetic is exact; decimal values appear only at the API edge.
//  3. **Avoid circular references**: relationships use ID strings, not pointers.
//  4. **Explicit states**: the idempotency entry models its reserved/completed
//     lifecycle as a tagged state, never as an implicit null check.
package models
