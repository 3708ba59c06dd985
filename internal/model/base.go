package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogBase 内容目录条目（成就、任务）的公共字段，ID 由内容作者指定
// swagger:model
type CatalogBase struct {
	ID        string         `gorm:"primaryKey;type:varchar(64)" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (b *CatalogBase) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return
}
