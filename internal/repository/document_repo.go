package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/crestfield/lecturer-claims/internal/models"
)

// DocumentRepository handles supporting-document database operations
type DocumentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *sql.DB, logger *zap.Logger) *DocumentRepository {
	return &DocumentRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new supporting document and assigns its ID
func (r *DocumentRepository) Create(ctx context.Context, doc *models.SupportingDocument) error {
	query := `
		INSERT INTO supporting_documents (claim_id, file_name, file_path, page_count, active, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		doc.ClaimID,
		doc.FileName,
		doc.FilePath,
		doc.PageCount,
		doc.Active,
		doc.UploadedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create document", zap.Int64("claim_id", doc.ClaimID), zap.Error(err))
		return fmt.Errorf("failed to create document: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	doc.ID = id
	return nil
}

// CountActiveDocuments counts the active documents attached to a claim.
func (r *DocumentRepository) CountActiveDocuments(ctx context.Context, claimID int64) (int, error) {
	query := `SELECT COUNT(*) FROM supporting_documents WHERE claim_id = ? AND active = 1`

	var count int
	if err := r.db.QueryRowContext(ctx, query, claimID).Scan(&count); err != nil {
		r.logger.Error("Failed to count documents", zap.Int64("claim_id", claimID), zap.Error(err))
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}

	return count, nil
}

// ListByClaim retrieves all documents for a claim, active first.
func (r *DocumentRepository) ListByClaim(ctx context.Context, claimID int64) ([]*models.SupportingDocument, error) {
	query := `
		SELECT id, claim_id, file_name, file_path, page_count, active, uploaded_at
		FROM supporting_documents
		WHERE claim_id = ?
		ORDER BY active DESC, uploaded_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, claimID)
	if err != nil {
		r.logger.Error("Failed to list documents", zap.Int64("claim_id", claimID), zap.Error(err))
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.SupportingDocument
	for rows.Next() {
		var doc models.SupportingDocument
		err := rows.Scan(
			&doc.ID,
			&doc.ClaimID,
			&doc.FileName,
			&doc.FilePath,
			&doc.PageCount,
			&doc.Active,
			&doc.UploadedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, &doc)
	}

	return docs, rows.Err()
}

// Deactivate soft-deletes a document.
func (r *DocumentRepository) Deactivate(ctx context.Context, id int64) error {
	query := `UPDATE supporting_documents SET active = 0 WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		r.logger.Error("Failed to deactivate document", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to deactivate document: %w", err)
	}

	return nil
}
