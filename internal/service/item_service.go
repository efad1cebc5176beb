package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campus-ops/lostfound-api/internal/models"
	appErrors "github.com/campus-ops/lostfound-api/pkg/errors"
)

type itemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	FindByID(ctx context.Context, id string) (*models.Item, error)
	List(ctx context.Context, filter models.ItemFilter) ([]models.Item, int, error)
}

type photoStorage interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

type photoURLSigner interface {
	Generate(itemID, relPath string) (string, time.Time, error)
	Parse(token string) (itemID, relPath string, expiresAt time.Time, err error)
}

// ReportItemRequest is the payload for reporting a found item.
type ReportItemRequest struct {
	Name          string `form:"name" json:"name" validate:"required"`
	Category      string `form:"category" json:"category" validate:"required"`
	Description   string `form:"description" json:"description"`
	LocationFound string `form:"location_found" json:"location_found" validate:"required"`
	DateFound     string `form:"date_found" json:"date_found" validate:"required"`
}

// PhotoUpload carries upload metadata and the stream reader.
type PhotoUpload struct {
	Filename string
	Size     int64
	MimeType string
	Content  io.ReadSeeker
}

// PhotoDownload bundles a photo file handle with its metadata for streaming.
type PhotoDownload struct {
	File     *os.File
	MimeType string
	Name     string
}

// ItemServiceConfig tunes photo validation and listing cache behaviour.
type ItemServiceConfig struct {
	MaxPhotoSizeBytes int64
	AllowedMIMEs      []string
	ListCacheTTL      time.Duration
}

// ItemService handles the item registry workflows.
type ItemService struct {
	repo      itemRepository
	storage   photoStorage
	signer    photoURLSigner
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	maxSize   int64
	mimeSet   map[string]struct{}
	listTTL   time.Duration
}

// NewItemService creates an instance of ItemService.
func NewItemService(repo itemRepository, storage photoStorage, signer photoURLSigner, cache *CacheService, validate *validator.Validate, logger *zap.Logger, cfg ItemServiceConfig) *ItemService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.MaxPhotoSizeBytes <= 0 {
		cfg.MaxPhotoSizeBytes = 5 * 1024 * 1024
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{"image/jpeg", "image/png", "image/webp"}
	}
	mimeSet := make(map[string]struct{}, len(cfg.AllowedMIMEs))
	for _, mt := range cfg.AllowedMIMEs {
		mimeSet[strings.ToLower(mt)] = struct{}{}
	}
	return &ItemService{
		repo:      repo,
		storage:   storage,
		signer:    signer,
		cache:     cache,
		validator: validate,
		logger:    logger,
		maxSize:   cfg.MaxPhotoSizeBytes,
		mimeSet:   mimeSet,
		listTTL:   cfg.ListCacheTTL,
	}
}

// Report registers a found item for the authenticated reporter. The photo,
// when present, is validated and written to storage before the row is
// inserted; a failed insert removes the stored file again.
func (s *ItemService) Report(ctx context.Context, req ReportItemRequest, photo *PhotoUpload, actor *models.JWTClaims) (*models.Item, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}

	// Trim before validating so whitespace-only fields fail "required".
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	req.LocationFound = strings.TrimSpace(req.LocationFound)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid item payload")
	}

	category := models.ItemCategory(strings.ToLower(strings.TrimSpace(req.Category)))
	if !models.ValidItemCategory(category) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown category %q", req.Category))
	}

	dateFound, err := time.Parse("2006-01-02", req.DateFound)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date_found must be formatted as YYYY-MM-DD")
	}

	now := time.Now().UTC()
	item := &models.Item{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Category:      category,
		Description:   req.Description,
		LocationFound: req.LocationFound,
		DateFound:     dateFound,
		Status:        models.ItemAvailable,
		SubmittedBy:   actor.UserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var storedPath string
	if photo != nil {
		storedPath, err = s.storePhoto(item.ID, photo)
		if err != nil {
			return nil, err
		}
		item.PhotoPath = &storedPath
		mime := strings.ToLower(photo.MimeType)
		item.PhotoMime = &mime
	}

	if err := s.repo.Create(ctx, item); err != nil {
		if storedPath != "" {
			if cleanupErr := s.storage.Delete(storedPath); cleanupErr != nil {
				s.logger.Warn("failed to remove orphaned photo", zap.String("path", storedPath), zap.Error(cleanupErr))
			}
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create item")
	}

	s.invalidateListings(ctx)
	s.decorate(item)
	s.logger.Info("item reported", zap.String("item_id", item.ID), zap.String("submitted_by", actor.UserID))
	return item, nil
}

func (s *ItemService) storePhoto(itemID string, photo *PhotoUpload) (string, error) {
	if photo.Size > s.maxSize {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("photo exceeds the %d byte limit", s.maxSize))
	}

	mimeType, err := s.detectMime(photo)
	if err != nil {
		return "", err
	}
	if _, allowed := s.mimeSet[mimeType]; !allowed {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("photo type %q is not allowed", mimeType))
	}
	photo.MimeType = mimeType

	suffix := make([]byte, 4)
	_, _ = rand.Read(suffix)
	ext := filepath.Ext(photo.Filename)
	relPath := filepath.Join("photos", fmt.Sprintf("%s-%s%s", itemID, hex.EncodeToString(suffix), ext))

	stored, err := s.storage.SaveStream(relPath, photo.Content)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store photo")
	}
	return stored, nil
}

func (s *ItemService) detectMime(photo *PhotoUpload) (string, error) {
	head := make([]byte, 512)
	n, err := photo.Content.Read(head)
	if err != nil && err != io.EOF {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read photo")
	}
	if _, err := photo.Content.Seek(0, io.SeekStart); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rewind photo")
	}
	detected := strings.ToLower(http.DetectContentType(head[:n]))
	if idx := strings.Index(detected, ";"); idx > 0 {
		detected = detected[:idx]
	}
	return detected, nil
}

// cachedItem re-exposes the photo path for the cache round-trip; the model
// itself hides it from API responses, so a plain models.Item would come back
// from the JSON cache without it and lose its signed photo URL.
type cachedItem struct {
	models.Item
	PhotoPath *string `json:"photo_path,omitempty"`
}

type cachedListing struct {
	Items      []cachedItem       `json:"items"`
	Pagination *models.Pagination `json:"pagination"`
}

// ListAvailable returns available items, newest first. Results are cached
// per page/category when a cache is configured.
func (s *ItemService) ListAvailable(ctx context.Context, page, pageSize int, category *models.ItemCategory) ([]models.Item, *models.Pagination, error) {
	if category != nil && !models.ValidItemCategory(*category) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown category %q", *category))
	}

	cacheKey := fmt.Sprintf("items:available:p%d:s%d", page, pageSize)
	if category != nil {
		cacheKey += ":" + string(*category)
	}

	var cached cachedListing
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		items := make([]models.Item, len(cached.Items))
		for i := range cached.Items {
			items[i] = cached.Items[i].Item
			items[i].PhotoPath = cached.Items[i].PhotoPath
			s.decorate(&items[i])
		}
		return items, cached.Pagination, nil
	}

	status := models.ItemAvailable
	items, total, err := s.repo.List(ctx, models.ItemFilter{
		Status:   &status,
		Category: category,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list items")
	}

	pagination := paginationFor(page, pageSize, total)
	entries := make([]cachedItem, len(items))
	for i := range items {
		entries[i] = cachedItem{Item: items[i], PhotoPath: items[i].PhotoPath}
	}
	_ = s.cache.Set(ctx, cacheKey, cachedListing{Items: entries, Pagination: pagination}, s.listTTL)

	for i := range items {
		s.decorate(&items[i])
	}
	return items, pagination, nil
}

// Get returns an item by ID.
func (s *ItemService) Get(ctx context.Context, id string) (*models.Item, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "item not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load item")
	}
	s.decorate(item)
	return item, nil
}

// ListMine returns every item the caller reported, regardless of status.
func (s *ItemService) ListMine(ctx context.Context, actor *models.JWTClaims, page, pageSize int) ([]models.Item, *models.Pagination, error) {
	if actor == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	items, total, err := s.repo.List(ctx, models.ItemFilter{
		SubmittedBy: actor.UserID,
		Page:        page,
		PageSize:    pageSize,
	})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list items")
	}
	for i := range items {
		s.decorate(&items[i])
	}
	return items, paginationFor(page, pageSize, total), nil
}

// Photo validates the signed token and opens the stored photo for streaming.
func (s *ItemService) Photo(ctx context.Context, itemID, token string) (*PhotoDownload, error) {
	item, err := s.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.PhotoPath == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "item has no photo")
	}

	tokenItemID, relPath, _, err := s.signer.Parse(token)
	if err != nil || tokenItemID != item.ID || relPath != *item.PhotoPath {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired photo token")
	}

	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open photo")
	}

	mime := "application/octet-stream"
	if item.PhotoMime != nil {
		mime = *item.PhotoMime
	}
	return &PhotoDownload{File: file, MimeType: mime, Name: filepath.Base(relPath)}, nil
}

// InvalidateListings drops the cached available-items pages. Exposed for the
// claim workflow, which changes item visibility on completion.
func (s *ItemService) InvalidateListings(ctx context.Context) {
	s.invalidateListings(ctx)
}

func (s *ItemService) invalidateListings(ctx context.Context) {
	s.cache.Invalidate(ctx, "items:available:*")
}

func (s *ItemService) decorate(item *models.Item) {
	if item.PhotoPath == nil || s.signer == nil {
		return
	}
	token, _, err := s.signer.Generate(item.ID, *item.PhotoPath)
	if err != nil {
		s.logger.Warn("failed to sign photo URL", zap.String("item_id", item.ID), zap.Error(err))
		return
	}
	item.PhotoURL = fmt.Sprintf("/api/v1/items/%s/photo?token=%s", item.ID, token)
}

func paginationFor(page, pageSize, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
}
