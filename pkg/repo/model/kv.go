package model

import "gorm.io/datatypes"

// KVEntry backs the postgres KVStore: one row per key, value kept as JSON.
type KVEntry struct {
	BaseModel
	Key   string         `gorm:"type:varchar(255);not null;uniqueIndex" json:"key"`
	Value datatypes.JSON `gorm:"type:jsonb" json:"value"`
}

func (*KVEntry) TableName() string {
	return "kv_entry"
}
