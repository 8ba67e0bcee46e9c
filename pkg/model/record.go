package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record is a single categorized amount in a book.
type Record struct {
	ID            int64           `gorm:"column:id;primaryKey"`
	BookID        int64           `gorm:"column:book_id;not null"`
	SubCategoryID int64           `gorm:"column:sub_category_id;not null"`
	AssetID       *int64          `gorm:"column:asset_id"`
	Memo          *string         `gorm:"column:memo"`
	Amount        decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	OccurredAt    time.Time       `gorm:"column:occurred_at;not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Record) TableName() string {
	return "records"
}

// RecordConnect links a record to a connect tag.
type RecordConnect struct {
	RecordID  int64 `gorm:"column:record_id;primaryKey"`
	ConnectID int64 `gorm:"column:connect_id;primaryKey"`
}

func (RecordConnect) TableName() string {
	return "record_connects"
}
