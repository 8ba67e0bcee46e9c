package model

import "time"

// BaseCategory groups sub-categories. A nil BookID marks a global category,
// readable from every book and mutable by nobody.
type BaseCategory struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	BookID    *int64    `gorm:"column:book_id"`
	Name      string    `gorm:"column:name;not null"`
	Color     *string   `gorm:"column:color"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (BaseCategory) TableName() string {
	return "base_categories"
}

// IsGlobal reports whether the category belongs to the shared namespace.
func (c BaseCategory) IsGlobal() bool {
	return c.BookID == nil
}

// SubCategory belongs to exactly one BaseCategory and inherits its scope.
type SubCategory struct {
	ID             int64     `gorm:"column:id;primaryKey"`
	BaseCategoryID int64     `gorm:"column:base_category_id;not null"`
	Name           string    `gorm:"column:name;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (SubCategory) TableName() string {
	return "sub_categories"
}
