package ops

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// APICallLog records one AI endpoint invocation.
type APICallLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Endpoint   string         `gorm:"column:endpoint;not null;index" json:"endpoint"`
	Request    datatypes.JSON `gorm:"column:request;type:jsonb" json:"request,omitempty"`
	Response   datatypes.JSON `gorm:"column:response;type:jsonb" json:"response,omitempty"`
	Error      string         `gorm:"column:error" json:"error,omitempty"`
	DurationMS int64          `gorm:"column:duration_ms;not null;default:0" json:"durationMs"`
	RequestID  string         `gorm:"column:request_id;index" json:"requestId,omitempty"`
	CreatedAt  time.Time      `gorm:"not null;index;autoCreateTime" json:"createdAt"`
}

func (APICallLog) TableName() string { return "api_call_log" }

func (l *APICallLog) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

type AppSetting struct {
	Key       string    `gorm:"column:setting_key;primaryKey" json:"key"`
	Value     string    `gorm:"column:value;not null" json:"value"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

func (AppSetting) TableName() string { return "app_setting" }

// ConnectivityProbe rows are written by the test-db endpoint.
type ConnectivityProbe struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Message   string    `gorm:"column:message;not null" json:"message"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
}

func (ConnectivityProbe) TableName() string { return "connectivity_probe" }

func (p *ConnectivityProbe) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
