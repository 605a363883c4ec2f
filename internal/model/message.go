package model

import "time"

// Message is one answered question, written once per chat turn for audit
// and reporting. Sources holds the citations as a JSON array.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Question  string    `gorm:"type:text;not null" json:"question"`
	Answer    string    `gorm:"type:text;not null" json:"answer"`
	Sources   string    `gorm:"type:text" json:"sources"`
	CreatedAt time.Time `json:"created_at"`
}
