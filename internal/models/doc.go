// Package models defines the core domain models for scoreroom.
//
// # Models
//
//   - User: a player profile keyed by a stable OpenID, carrying lifetime stats
//   - Room: a bounded game session owning its members and balance history
//   - Member: one user's participation record inside a room
//   - BalanceChange: append-only ledger entry for a single point transfer
//   - GameRecord: a batch of per-member score deltas for one round
//   - PersonalRecord: a freeform score sheet kept outside any room
//
// # Design Principles
//
//  1. A Room exclusively owns its Members and BalanceHistory; they share its
//     lifetime and are always written together as one document.
//  2. GameRecords reference their Room by ID only (weak reference) and are
//     stored independently. Deleting a room does not cascade to its records.
//  3. Members are never removed from a room. Leaving flips Member.Status to
//     "left" so historical balances stay attributable.
//  4. Rooms carry a monotonic Version used for conditional writes; concurrent
//     read-modify-write cycles retry on version conflict.
package models
