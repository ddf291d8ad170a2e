package configurator

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// OrderSnapshotRecord is one published order snapshot, kept for audit.
type OrderSnapshotRecord struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SessionID   string         `gorm:"column:session_id;not null;index" json:"session_id"`
	ProductCode string         `gorm:"column:product_code;index" json:"product_code"`
	OrderKey    string         `gorm:"column:order_key;not null" json:"order_key"`
	SKU         string         `gorm:"column:sku;index" json:"sku"`
	BottleSlug  string         `gorm:"column:bottle_slug" json:"bottle_slug"`
	Price       *float64       `gorm:"column:price" json:"price,omitempty"`
	Valid       bool           `gorm:"column:valid;not null;default:false" json:"valid"`
	Snapshot    datatypes.JSON `gorm:"column:snapshot;type:jsonb" json:"snapshot"`
	CreatedAt   time.Time      `gorm:"not null;default:now();index" json:"created_at"`
}

func (OrderSnapshotRecord) TableName() string { return "order_snapshot" }

// UploadIntentRecord is one uploadDesign message as received from the parent.
type UploadIntentRecord struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SessionID    string         `gorm:"column:session_id;not null;index" json:"session_id"`
	DesignSide   string         `gorm:"column:design_side" json:"design_side"`
	DesignExport datatypes.JSON `gorm:"column:design_export;type:jsonb" json:"design_export"`
	Order        datatypes.JSON `gorm:"column:order_payload;type:jsonb" json:"order,omitempty"`
	CreatedAt    time.Time      `gorm:"not null;default:now();index" json:"created_at"`
}

func (UploadIntentRecord) TableName() string { return "upload_intent" }
