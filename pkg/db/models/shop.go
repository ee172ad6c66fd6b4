package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Shop is one tenant: a bot instance operated by a single owner. Shops are
// deactivated rather than deleted so ledger rows stay attributable.
type Shop struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	BotID      string    `gorm:"column:bot_id;not null;uniqueIndex:shops_bot_id_key"`
	OperatorID int64     `gorm:"column:operator_id;not null;index:shops_operator_id_idx"`
	IsActive   bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key when the caller did not.
func (s *Shop) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
