package scripts

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SourceManual   = "manual"
	SourceAdvanced = "advanced"
	SourceAgents   = "agents"
	SourceTest     = "test"
)

// Script is a saved video script. Content holds either a plain string or an
// array of timestamped sections; the editor decides which.
type Script struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title          string         `gorm:"column:title;not null;default:''" json:"title"`
	Content        datatypes.JSON `gorm:"column:content;type:jsonb" json:"content"`
	Storyline      datatypes.JSON `gorm:"column:storyline;type:jsonb" json:"storyline,omitempty"`
	TargetDuration int            `gorm:"column:target_duration;not null;default:0" json:"targetDuration"`
	Prompt         string         `gorm:"column:prompt" json:"prompt,omitempty"`
	SessionID      string         `gorm:"column:session_id;index" json:"sessionId,omitempty"`
	Source         string         `gorm:"column:source;index" json:"source,omitempty"`
	ProductionPlan datatypes.JSON `gorm:"column:production_plan;type:jsonb" json:"productionPlan,omitempty"`
	ResearchResult datatypes.JSON `gorm:"column:research_result;type:jsonb" json:"researchResult,omitempty"`
	Metadata       datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;index;autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time      `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

func (Script) TableName() string { return "script" }

func (s *Script) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
