package document

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crestfield/lecturer-claims/internal/models"
)

type mockDocumentStore struct {
	createFunc  func(ctx context.Context, doc *models.SupportingDocument) error
	deactivated []int64
	created     []*models.SupportingDocument
}

func (m *mockDocumentStore) Create(ctx context.Context, doc *models.SupportingDocument) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, doc)
	}
	doc.ID = int64(len(m.created) + 1)
	m.created = append(m.created, doc)
	return nil
}

func (m *mockDocumentStore) ListByClaim(ctx context.Context, claimID int64) ([]*models.SupportingDocument, error) {
	return m.created, nil
}

func (m *mockDocumentStore) Deactivate(ctx context.Context, id int64) error {
	m.deactivated = append(m.deactivated, id)
	return nil
}

type mockClaimReader struct {
	claim *models.Claim
}

func (m *mockClaimReader) GetByID(ctx context.Context, id int64) (*models.Claim, error) {
	if m.claim != nil && m.claim.ID == id {
		return m.claim, nil
	}
	return nil, nil
}

func TestAttach_StoresNonPDFWithoutVerification(t *testing.T) {
	dir := t.TempDir()
	store := &mockDocumentStore{}
	svc := NewService(store, &mockClaimReader{claim: &models.Claim{ID: 1}}, dir, zap.NewNop())

	doc, err := svc.Attach(context.Background(), 1, "timesheet.csv", []byte("week,hours\n1,10\n"))

	require.NoError(t, err)
	assert.Equal(t, "timesheet.csv", doc.FileName)
	assert.Equal(t, 0, doc.PageCount)
	assert.True(t, doc.Active)

	stored, err := os.ReadFile(filepath.Join(dir, "1", "timesheet.csv"))
	require.NoError(t, err)
	assert.Equal(t, "week,hours\n1,10\n", string(stored))
	assert.Len(t, store.created, 1)
}

func TestAttach_RejectsUnreadablePDF(t *testing.T) {
	store := &mockDocumentStore{}
	svc := NewService(store, &mockClaimReader{claim: &models.Claim{ID: 1}}, t.TempDir(), zap.NewNop())

	_, err := svc.Attach(context.Background(), 1, "scan.pdf", []byte("not a pdf at all"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreadable PDF")
	assert.Empty(t, store.created, "a rejected upload leaves no record")
}

func TestAttach_UnknownClaim(t *testing.T) {
	store := &mockDocumentStore{}
	svc := NewService(store, &mockClaimReader{}, t.TempDir(), zap.NewNop())

	_, err := svc.Attach(context.Background(), 99, "timesheet.csv", []byte("data"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.Empty(t, store.created)
}

func TestAttach_StripsDirectoryFromFileName(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(&mockDocumentStore{}, &mockClaimReader{claim: &models.Claim{ID: 1}}, dir, zap.NewNop())

	doc, err := svc.Attach(context.Background(), 1, "../../etc/timesheet.csv", []byte("data"))

	require.NoError(t, err)
	assert.Equal(t, "timesheet.csv", doc.FileName)
	assert.Equal(t, filepath.Join(dir, "1", "timesheet.csv"), doc.FilePath)
}

func TestRemove(t *testing.T) {
	store := &mockDocumentStore{}
	svc := NewService(store, &mockClaimReader{}, t.TempDir(), zap.NewNop())

	require.NoError(t, svc.Remove(context.Background(), 5))
	assert.Equal(t, []int64{5}, store.deactivated)
}
