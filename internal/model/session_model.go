package model

import "time"

// StoredToken is the persisted form of an auth session, one row per client
// (a browser session id for the portal, a fixed key for the CLI).
type StoredToken struct {
	Key       string    `gorm:"column:session_key;primaryKey;type:varchar(64)" json:"key"`
	Token     string    `gorm:"type:text" json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *StoredToken) TableName() string {
	return "stored_tokens"
}
