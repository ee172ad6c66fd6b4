package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Favorite links a viewer to a product they bookmarked. Unlike orders it has
// no snapshot semantics: it always resolves against the live product and
// becomes unresolvable when the product is deleted.
type Favorite struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ShopID    uuid.UUID `gorm:"column:shop_id;type:uuid;not null;index:favorites_shop_id_idx"`
	ViewerID  int64     `gorm:"column:viewer_id;not null;uniqueIndex:favorites_product_viewer_key"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index:favorites_product_id_idx;uniqueIndex:favorites_product_viewer_key"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// BeforeCreate assigns the primary key when the caller did not.
func (f *Favorite) BeforeCreate(*gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
