package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GenerationLog records one finished call to the document generator.
type GenerationLog struct {
	Id         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	SessionId  string     `gorm:"type:varchar(64);not null;index"`
	ProjectId  *uuid.UUID `gorm:"type:uuid;index"`
	UserId     *uuid.UUID `gorm:"type:uuid;index"`
	Kinds      string     `gorm:"type:varchar(255)"`
	Outcome    string     `gorm:"type:varchar(32);not null"`
	Error      string     `gorm:"type:text"`
	DurationMs int64
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (GenerationLog) TableName() string {
	return "generation_logs"
}

func (l *GenerationLog) BeforeCreate(tx *gorm.DB) error {
	if l.Id == uuid.Nil {
		l.Id = uuid.New()
	}
	return nil
}
