package model

import "time"

//go:generate go run github.com/dmarkham/enumer -type Role -trimprefix Role -transform lower -text -sql -output role_enumer.go

// Role is a user's relationship to a book. Values are ordered so that a
// greater role includes every capability of a lesser one.
type Role int

const (
	RoleViewer Role = iota
	RoleEditor
	RoleOwner
)

// RoleAssignment grants a user a role on a book. Absence of a row means no
// access.
type RoleAssignment struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	BookID    int64     `gorm:"column:book_id;not null;uniqueIndex:idx_book_roles_book_user"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:idx_book_roles_book_user"`
	Role      Role      `gorm:"column:role;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (RoleAssignment) TableName() string {
	return "book_roles"
}
