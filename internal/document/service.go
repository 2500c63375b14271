package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"

	"github.com/crestfield/lecturer-claims/internal/models"
)

// DocumentStore defines the persistence operations for supporting documents.
type DocumentStore interface {
	Create(ctx context.Context, doc *models.SupportingDocument) error
	ListByClaim(ctx context.Context, claimID int64) ([]*models.SupportingDocument, error)
	Deactivate(ctx context.Context, id int64) error
}

// ClaimReader checks that the target claim exists.
type ClaimReader interface {
	GetByID(ctx context.Context, id int64) (*models.Claim, error)
}

// Service handles supporting-document intake. PDF uploads are opened before
// storage so an unreadable file is rejected at the door rather than
// discovered during review.
type Service struct {
	docs       DocumentStore
	claims     ClaimReader
	storageDir string
	logger     *zap.Logger
}

// NewService creates a new document service
func NewService(docs DocumentStore, claims ClaimReader, storageDir string, logger *zap.Logger) *Service {
	return &Service{
		docs:       docs,
		claims:     claims,
		storageDir: storageDir,
		logger:     logger,
	}
}

// Attach verifies and stores an uploaded document against a claim.
func (s *Service) Attach(ctx context.Context, claimID int64, fileName string, content []byte) (*models.SupportingDocument, error) {
	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("load claim: %w", err)
	}
	if claim == nil {
		return nil, fmt.Errorf("claim %d not found", claimID)
	}

	pageCount := 0
	if strings.HasSuffix(strings.ToLower(fileName), ".pdf") {
		pageCount, err = verifyPDF(content)
		if err != nil {
			s.logger.Warn("Rejected unreadable PDF",
				zap.Int64("claim_id", claimID),
				zap.String("file_name", fileName),
				zap.Error(err))
			return nil, fmt.Errorf("unreadable PDF document: %w", err)
		}
	}

	dir := filepath.Join(s.storageDir, fmt.Sprintf("%d", claimID))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create document directory: %w", err)
	}

	path := filepath.Join(dir, filepath.Base(fileName))
	if err := os.WriteFile(path, content, 0644); err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	doc := &models.SupportingDocument{
		ClaimID:    claimID,
		FileName:   filepath.Base(fileName),
		FilePath:   path,
		PageCount:  pageCount,
		Active:     true,
		UploadedAt: time.Now(),
	}

	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("record document: %w", err)
	}

	s.logger.Info("Document attached",
		zap.Int64("claim_id", claimID),
		zap.Int64("document_id", doc.ID),
		zap.String("file_name", doc.FileName),
		zap.Int("page_count", pageCount))

	return doc, nil
}

// List returns all documents recorded against a claim.
func (s *Service) List(ctx context.Context, claimID int64) ([]*models.SupportingDocument, error) {
	return s.docs.ListByClaim(ctx, claimID)
}

// Remove soft-deletes a document. The file stays on disk for audit.
func (s *Service) Remove(ctx context.Context, documentID int64) error {
	if err := s.docs.Deactivate(ctx, documentID); err != nil {
		return fmt.Errorf("deactivate document: %w", err)
	}

	s.logger.Info("Document deactivated", zap.Int64("document_id", documentID))
	return nil
}

// verifyPDF opens the document and returns its page count.
func verifyPDF(content []byte) (int, error) {
	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		return 0, err
	}
	defer doc.Close()

	pages := doc.NumPage()
	if pages < 1 {
		return 0, fmt.Errorf("document has no pages")
	}

	return pages, nil
}
