package model

import (
	"encoding/json"
	"time"
)

// Embedding stores one retrievable chunk of a document together with its
// vector. The vector is stored as a JSON array of float32 for portability.
type Embedding struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DocumentID uint      `gorm:"not null;index" json:"document_id"`
	ChunkText  string    `gorm:"type:text;not null" json:"chunk_text"`
	Embedding  string    `gorm:"type:text" json:"-"` // JSON array of float32
	ChunkIndex int       `gorm:"not null" json:"chunk_index"`
	CreatedAt  time.Time `json:"created_at"`
}

// Vector returns the parsed embedding slice; empty on parse error so a
// corrupt row degrades to a non-match instead of failing a ranking pass.
func (e *Embedding) Vector() []float32 {
	if e.Embedding == "" {
		return nil
	}
	var v []float32
	_ = json.Unmarshal([]byte(e.Embedding), &v)
	return v
}

// SetVector stores the embedding as JSON.
func (e *Embedding) SetVector(vec []float32) {
	if len(vec) == 0 {
		e.Embedding = "[]"
		return
	}
	b, _ := json.Marshal(vec)
	e.Embedding = string(b)
}
