package scripts

import (
	"time"

	"gorm.io/datatypes"
)

// Session is keyed by the client-generated session id, not a uuid.
type Session struct {
	ID        string         `gorm:"column:id;primaryKey" json:"id"`
	AgentData datatypes.JSON `gorm:"column:agent_data;type:jsonb" json:"agentData,omitempty"`
	Progress  int            `gorm:"column:progress;not null;default:0" json:"progress"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"not null;index;autoUpdateTime" json:"updatedAt"`
}

func (Session) TableName() string { return "session" }
