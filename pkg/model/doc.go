// Package model defines the database models for the ledger.
//
// This package contains GORM models that map to the ledger's relational
// schema. Every mutable table carries created_at/updated_at markers; the
// mutation engine touches updated_at on every applied update.
//
// # Core Models
//
//   - User: identity with a credential hash, soft-deleted through is_active
//   - Book: a ledger, owned and shared through RoleAssignment
//   - RoleAssignment: (user, book) -> Role (owner, editor, viewer)
//   - BaseCategory: book-scoped, or global when BookID is nil
//   - SubCategory: scoped to exactly one BaseCategory
//   - Record: a categorized amount in a book, tagged with Connects
//   - Connect: a globally unique named tag
//   - Asset: an externally stored attachment owned by a book
//
// # Database Schema
//
//   - users, books, book_roles
//   - base_categories, sub_categories
//   - records, record_connects, connects
//   - assets
//
// Child rows reference their parents with ON DELETE CASCADE so that deleting a
// book removes its role assignments, categories and records in the same
// statement.
package model
