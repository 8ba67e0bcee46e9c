package authz

// The fragments below are SELECT bodies embedded by the mutation engine as
// the "allowed" CTE of its single statement. Each yields a row exactly when
// the caller passes. They join against a "scope" CTE that exposes the target
// (or parent) row with at least the columns id and book_id, and expect the
// named arguments @caller and the one passed as rolesArg.

// RoleOnScopeBook passes when the caller is active and holds one of the
// roles bound to @rolesArg on the scope's book. A NULL book_id (global
// category) never matches, so global resources are never writable.
func RoleOnScopeBook(rolesArg string) string {
	return "SELECT 1 FROM book_roles br JOIN scope s ON br.book_id = s.book_id " +
		"JOIN users u ON u.id = br.user_id " +
		"WHERE br.user_id = @caller AND u.is_active AND br.role IN @" + rolesArg
}

// ActiveCaller passes when the caller is an existing, active user. Used for
// kinds created without a parent book.
func ActiveCaller() string {
	return "SELECT 1 FROM users u WHERE u.id = @caller AND u.is_active"
}

// CallerIsColumn passes when the scope column holds the caller's id and the
// caller is active. Used for self-service (users) and creator ownership
// (connects).
func CallerIsColumn(column string) string {
	return "SELECT 1 FROM scope s JOIN users u ON u.id = s." + column +
		" WHERE s." + column + " = @caller AND u.is_active"
}
