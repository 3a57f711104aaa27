package entities

import "time"

// Record status discriminator. A record is in exactly one partition at a time;
// every transition is a single-row update, so no reader can observe a record
// in neither partition.
const (
	StatusActive  = "active"
	StatusDeleted = "deleted"
)

// ContentRecord represents one persisted board post.
type ContentRecord struct {
	ID       string `gorm:"type:varchar(32);primaryKey"`
	Type     string `gorm:"type:varchar(16);not null"`
	Status   string `gorm:"type:varchar(16);not null;index"`
	Text     string `gorm:"type:text"`
	Data     string `gorm:"type:varchar(255)"`
	Filename string `gorm:"type:varchar(255)"`
	Size     int64
	Mimetype string `gorm:"type:varchar(128)"`

	// Conversion provenance, present only when the stored payload is a
	// derived conversion of the original upload.
	OriginalData     string `gorm:"type:varchar(255)"`
	OriginalFilename string `gorm:"type:varchar(255)"`
	OriginalSize     int64
	OriginalMimetype string `gorm:"type:varchar(128)"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
	DeletedAt *time.Time
}

func (ContentRecord) TableName() string {
	return "content_records"
}
