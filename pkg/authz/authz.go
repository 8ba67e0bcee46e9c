package authz

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ledgerbook/ledger-in-go/pkg/model"
)

// Authority resolves the role a user holds on a book.
type Authority interface {
	// Resolve returns the caller's role on the book. ok is false when the
	// user holds no role there, is inactive, or either id does not exist.
	Resolve(ctx context.Context, userID, bookID int64) (role model.Role, ok bool, err error)
}

// WriteCapable reports whether a resolved role may create or modify content
// in a book.
func WriteCapable(role model.Role, ok bool) bool {
	return ok && role != model.RoleViewer
}

// OwnerCapable reports whether a resolved role may delete book content and
// manage sharing.
func OwnerCapable(role model.Role, ok bool) bool {
	return ok && role == model.RoleOwner
}

// WriteRoles lists the role names for which WriteCapable holds.
func WriteRoles() []string {
	return rolesWhere(WriteCapable)
}

// OwnerRoles lists the role names for which OwnerCapable holds.
func OwnerRoles() []string {
	return rolesWhere(OwnerCapable)
}

func rolesWhere(capable func(model.Role, bool) bool) []string {
	var names []string
	for _, r := range model.RoleValues() {
		if capable(r, true) {
			names = append(names, r.String())
		}
	}
	return names
}

// Ensure Store implements Authority
var _ Authority = (*Store)(nil)

// Store implements Authority using GORM
type Store struct {
	db *gorm.DB
}

// NewStore creates a new Store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Resolve looks up the caller's book_roles row.
func (s *Store) Resolve(ctx context.Context, userID, bookID int64) (model.Role, bool, error) {
	var row struct {
		Role model.Role `gorm:"column:role"`
	}
	res := s.db.WithContext(ctx).Raw(`
		SELECT br.role
		FROM book_roles br
		JOIN users u ON u.id = br.user_id
		WHERE br.book_id = ? AND br.user_id = ? AND u.is_active
	`, bookID, userID).Scan(&row)
	if res.Error != nil {
		return 0, false, fmt.Errorf("resolve role of user %d on book %d: %w", userID, bookID, res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, false, nil
	}
	return row.Role, true, nil
}
