package media

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GeneratedImage struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Prompt         string    `gorm:"column:prompt;not null" json:"prompt"`
	EnhancedPrompt string    `gorm:"column:enhanced_prompt" json:"enhancedPrompt,omitempty"`
	RevisedPrompt  string    `gorm:"column:revised_prompt" json:"revisedPrompt,omitempty"`
	Style          string    `gorm:"column:style" json:"style"`
	Size           string    `gorm:"column:size" json:"size"`
	Quality        string    `gorm:"column:quality" json:"quality"`
	// StorageKey is empty when no bucket is configured.
	StorageKey string    `gorm:"column:storage_key" json:"storageKey,omitempty"`
	URL        string    `gorm:"column:url" json:"url,omitempty"`
	CreatedAt  time.Time `gorm:"not null;index;autoCreateTime" json:"createdAt"`
}

func (GeneratedImage) TableName() string { return "generated_image" }

func (g *GeneratedImage) BeforeCreate(*gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
