package media

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ImageSearch struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID    string         `gorm:"column:session_id;not null;index" json:"sessionId"`
	Query        string         `gorm:"column:query;not null" json:"query"`
	Results      datatypes.JSON `gorm:"column:results;type:jsonb" json:"results"`
	ResultsCount int            `gorm:"column:results_count;not null;default:0" json:"resultsCount"`
	CreatedAt    time.Time      `gorm:"not null;index;autoCreateTime" json:"createdAt"`
}

func (ImageSearch) TableName() string { return "image_search" }

func (s *ImageSearch) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
