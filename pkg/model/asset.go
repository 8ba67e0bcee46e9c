package model

import "time"

// Asset is an attachment kept in object storage. Only its key is stored here.
type Asset struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	BookID    int64     `gorm:"column:book_id;not null"`
	ObjectKey string    `gorm:"column:object_key;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Asset) TableName() string {
	return "assets"
}
