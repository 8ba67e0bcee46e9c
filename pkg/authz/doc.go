// Package authz is the role authority of the ledger.
//
// A user's access to a book is the single book_roles row for that pair.
// Roles are ordered owner > editor > viewer:
//
//   - viewer may read
//   - editor may also create and update book content
//   - owner may also delete book content and manage sharing
//
// No row means no access. Global categories have no book and therefore no
// role rows, which makes them readable by everyone and writable by nobody.
//
// The mutation engine never calls Resolve on its hot path. It embeds the SQL
// fragments of this package into its own statement so that the role check
// and the write it gates happen in one round trip. Resolve serves callers
// that only need to know a role.
package authz
