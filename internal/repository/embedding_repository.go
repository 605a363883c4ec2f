package repository

import (
	"fmt"

	"gorm.io/gorm"

	"docuchat/internal/model"
)

type EmbeddingRepository struct {
	db *gorm.DB
}

func NewEmbeddingRepository(db *gorm.DB) *EmbeddingRepository {
	return &EmbeddingRepository{db: db}
}

// ListByDocumentIDs returns all embedding rows for the given documents,
// ordered by document and chunk position. Caller filters document IDs by
// user ownership.
func (r *EmbeddingRepository) ListByDocumentIDs(documentIDs []uint) ([]model.Embedding, error) {
	if len(documentIDs) == 0 {
		return nil, nil
	}
	var rows []model.Embedding
	if err := r.db.Where("document_id IN ?", documentIDs).
		Order("document_id ASC, chunk_index ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list embeddings by document ids failed: %w", err)
	}
	return rows, nil
}

func (r *EmbeddingRepository) DeleteByDocumentID(documentID uint) error {
	if err := r.db.Where("document_id = ?", documentID).Delete(&model.Embedding{}).Error; err != nil {
		return fmt.Errorf("delete embeddings by document failed: %w", err)
	}
	return nil
}
