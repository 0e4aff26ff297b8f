package model

import (
	"time"

	"github.com/google/uuid"
)

type MessageCitation struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MessageId     uuid.UUID `gorm:"type:uuid;not null;index"`
	DocumentName  string    `gorm:"type:varchar(255);not null"`
	DocumentTitle string    `gorm:"type:varchar(255)"`
	DocumentType  string    `gorm:"type:varchar(100)"`
	PageNumber    int       `gorm:"default:0"`
	SectionTitle  string    `gorm:"type:text"`
	Similarity    float64   `gorm:"type:double precision"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`

	// Relationships
	Message *Message `gorm:"foreignKey:MessageId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (MessageCitation) TableName() string {
	return "message_citations"
}
