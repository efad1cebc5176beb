package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campus-ops/lostfound-api/internal/models"
	appErrors "github.com/campus-ops/lostfound-api/pkg/errors"
)

type mockItemRepo struct {
	items     map[string]*models.Item
	createErr error
}

func newMockItemRepo() *mockItemRepo {
	return &mockItemRepo{items: make(map[string]*models.Item)}
}

func (m *mockItemRepo) Create(ctx context.Context, item *models.Item) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.items[item.ID] = item
	return nil
}

func (m *mockItemRepo) FindByID(ctx context.Context, id string) (*models.Item, error) {
	if item, ok := m.items[id]; ok {
		return item, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockItemRepo) List(ctx context.Context, filter models.ItemFilter) ([]models.Item, int, error) {
	var out []models.Item
	for _, item := range m.items {
		if filter.Status != nil && item.Status != *filter.Status {
			continue
		}
		if filter.Category != nil && item.Category != *filter.Category {
			continue
		}
		if filter.SubmittedBy != "" && item.SubmittedBy != filter.SubmittedBy {
			continue
		}
		out = append(out, *item)
	}
	return out, len(out), nil
}

type mockPhotoStorage struct {
	dir     string
	saved   []string
	deleted []string
	saveErr error
}

func (m *mockPhotoStorage) SaveStream(filename string, r io.Reader) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.saved = append(m.saved, filename)
	if m.dir != "" {
		path := filepath.Join(m.dir, filepath.Base(filename))
		f, err := os.Create(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		if _, err := io.Copy(f, r); err != nil {
			return "", err
		}
	}
	return filename, nil
}

func (m *mockPhotoStorage) Open(filename string) (*os.File, error) {
	return os.Open(filepath.Join(m.dir, filepath.Base(filename)))
}

func (m *mockPhotoStorage) Delete(filename string) error {
	m.deleted = append(m.deleted, filename)
	return nil
}

type mockPhotoSigner struct{}

func (m *mockPhotoSigner) Generate(itemID, relPath string) (string, time.Time, error) {
	return "tok-" + itemID, time.Now().Add(time.Hour), nil
}

func (m *mockPhotoSigner) Parse(token string) (string, string, time.Time, error) {
	if len(token) <= 4 || token[:4] != "tok-" {
		return "", "", time.Time{}, errors.New("bad token")
	}
	return token[4:], "photos/stub.jpg", time.Now().Add(time.Hour), nil
}

func newTestItemService(repo *mockItemRepo, store *mockPhotoStorage) *ItemService {
	return NewItemService(repo, store, &mockPhotoSigner{}, nil, validator.New(), zap.NewNop(), ItemServiceConfig{
		MaxPhotoSizeBytes: 1024,
	})
}

func jpegUpload(size int) *PhotoUpload {
	content := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{0x00}, size)...)
	return &PhotoUpload{
		Filename: "photo.jpg",
		Size:     int64(len(content)),
		Content:  bytes.NewReader(content),
	}
}

func TestReportItemWithoutPhoto(t *testing.T) {
	repo := newMockItemRepo()
	svc := newTestItemService(repo, &mockPhotoStorage{})

	item, err := svc.Report(context.Background(), ReportItemRequest{
		Name:          "Blue Backpack",
		Category:      "accessories",
		Description:   "found near gym",
		LocationFound: "Gymnasium",
		DateFound:     "2026-02-10",
	}, nil, studentClaims())
	require.NoError(t, err)
	assert.Equal(t, models.ItemAvailable, item.Status)
	assert.Equal(t, "student-1", item.SubmittedBy)
	assert.Nil(t, item.PhotoPath)
	assert.Len(t, repo.items, 1)
}

func TestReportItemUnknownCategory(t *testing.T) {
	repo := newMockItemRepo()
	svc := newTestItemService(repo, &mockPhotoStorage{})

	_, err := svc.Report(context.Background(), ReportItemRequest{
		Name:          "Thing",
		Category:      "vehicles",
		LocationFound: "Lot B",
		DateFound:     "2026-02-10",
	}, nil, studentClaims())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.items)
}

func TestReportItemBadDate(t *testing.T) {
	repo := newMockItemRepo()
	svc := newTestItemService(repo, &mockPhotoStorage{})

	_, err := svc.Report(context.Background(), ReportItemRequest{
		Name:          "Thing",
		Category:      "other",
		LocationFound: "Lot B",
		DateFound:     "10/02/2026",
	}, nil, studentClaims())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReportItemStoresPhoto(t *testing.T) {
	repo := newMockItemRepo()
	store := &mockPhotoStorage{dir: t.TempDir()}
	svc := newTestItemService(repo, store)

	item, err := svc.Report(context.Background(), ReportItemRequest{
		Name:          "Phone",
		Category:      "electronics",
		LocationFound: "Library",
		DateFound:     "2026-02-10",
	}, jpegUpload(64), studentClaims())
	require.NoError(t, err)
	require.NotNil(t, item.PhotoPath)
	require.NotNil(t, item.PhotoMime)
	assert.Equal(t, "image/jpeg", *item.PhotoMime)
	assert.Len(t, store.saved, 1)
	assert.NotEmpty(t, item.PhotoURL)
}

func TestReportItemPhotoTooLarge(t *testing.T) {
	repo := newMockItemRepo()
	svc := newTestItemService(repo, &mockPhotoStorage{})

	_, err := svc.Report(context.Background(), ReportItemRequest{
		Name:          "Phone",
		Category:      "electronics",
		LocationFound: "Library",
		DateFound:     "2026-02-10",
	}, jpegUpload(4096), studentClaims())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.items)
}

func TestReportItemRejectsNonImageContent(t *testing.T) {
	repo := newMockItemRepo()
	svc := newTestItemService(repo, &mockPhotoStorage{})

	upload := &PhotoUpload{
		Filename: "notes.jpg",
		Size:     12,
		Content:  bytes.NewReader([]byte("hello world!")),
	}
	_, err := svc.Report(context.Background(), ReportItemRequest{
		Name:          "Phone",
		Category:      "electronics",
		LocationFound: "Library",
		DateFound:     "2026-02-10",
	}, upload, studentClaims())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReportItemInsertFailureRemovesPhoto(t *testing.T) {
	repo := newMockItemRepo()
	repo.createErr = errors.New("insert failed")
	store := &mockPhotoStorage{dir: t.TempDir()}
	svc := newTestItemService(repo, store)

	_, err := svc.Report(context.Background(), ReportItemRequest{
		Name:          "Phone",
		Category:      "electronics",
		LocationFound: "Library",
		DateFound:     "2026-02-10",
	}, jpegUpload(64), studentClaims())
	require.Error(t, err)
	require.Len(t, store.saved, 1)
	assert.Equal(t, store.saved, store.deleted)
}

func TestListAvailableFiltersStatus(t *testing.T) {
	repo := newMockItemRepo()
	repo.items["i1"] = &models.Item{ID: "i1", Status: models.ItemAvailable, Category: models.CategoryBooks}
	repo.items["i2"] = &models.Item{ID: "i2", Status: models.ItemReturned, Category: models.CategoryBooks}
	svc := newTestItemService(repo, &mockPhotoStorage{})

	items, pagination, err := svc.ListAvailable(context.Background(), 1, 20, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "i1", items[0].ID)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestListAvailableCacheHitKeepsPhotoURL(t *testing.T) {
	path := "photos/i1.jpg"
	repo := newMockItemRepo()
	repo.items["i1"] = &models.Item{ID: "i1", Status: models.ItemAvailable, PhotoPath: &path}
	cache := NewCacheService(newMockCacheRepo(), nil, time.Minute, zap.NewNop(), true)
	svc := NewItemService(repo, &mockPhotoStorage{}, &mockPhotoSigner{}, cache, validator.New(), zap.NewNop(), ItemServiceConfig{})

	items, _, err := svc.ListAvailable(context.Background(), 1, 20, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotEmpty(t, items[0].PhotoURL)

	// Second call is served from cache and must still carry the signed URL.
	items, _, err = svc.ListAvailable(context.Background(), 1, 20, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.NotEmpty(t, items[0].PhotoURL)
	require.NotNil(t, items[0].PhotoPath)
	assert.Equal(t, path, *items[0].PhotoPath)
}

func TestReportItemWhitespaceFieldsRejected(t *testing.T) {
	repo := newMockItemRepo()
	svc := newTestItemService(repo, &mockPhotoStorage{})

	_, err := svc.Report(context.Background(), ReportItemRequest{
		Name:          "   ",
		Category:      "other",
		LocationFound: "\t",
		DateFound:     "2026-02-10",
	}, nil, studentClaims())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.items)
}

func TestListMineIncludesAllStatuses(t *testing.T) {
	repo := newMockItemRepo()
	repo.items["i1"] = &models.Item{ID: "i1", Status: models.ItemAvailable, SubmittedBy: "student-1"}
	repo.items["i2"] = &models.Item{ID: "i2", Status: models.ItemReturned, SubmittedBy: "student-1"}
	repo.items["i3"] = &models.Item{ID: "i3", Status: models.ItemAvailable, SubmittedBy: "someone-else"}
	svc := newTestItemService(repo, &mockPhotoStorage{})

	items, _, err := svc.ListMine(context.Background(), studentClaims(), 1, 20)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestPhotoTokenMustMatchItem(t *testing.T) {
	path := "photos/stub.jpg"
	mime := "image/jpeg"
	repo := newMockItemRepo()
	repo.items["i1"] = &models.Item{ID: "i1", PhotoPath: &path, PhotoMime: &mime}
	svc := newTestItemService(repo, &mockPhotoStorage{dir: t.TempDir()})

	_, err := svc.Photo(context.Background(), "i1", "tok-other-item")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestPhotoMissingPhoto(t *testing.T) {
	repo := newMockItemRepo()
	repo.items["i1"] = &models.Item{ID: "i1"}
	svc := newTestItemService(repo, &mockPhotoStorage{})

	_, err := svc.Photo(context.Background(), "i1", "tok-i1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestPhotoStreamsStoredFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stub.jpg"), []byte{0xFF, 0xD8, 0xFF}, 0o644))

	path := "photos/stub.jpg"
	mime := "image/jpeg"
	repo := newMockItemRepo()
	repo.items["i1"] = &models.Item{ID: "i1", PhotoPath: &path, PhotoMime: &mime}
	svc := newTestItemService(repo, &mockPhotoStorage{dir: dir})

	download, err := svc.Photo(context.Background(), "i1", "tok-i1")
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, "image/jpeg", download.MimeType)
	assert.Equal(t, "stub.jpg", download.Name)
}
