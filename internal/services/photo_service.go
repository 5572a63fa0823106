// internal/services/photo_service.go
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/footycollect/footycollect-api/internal/config"
	"github.com/footycollect/footycollect-api/internal/database"
	"github.com/footycollect/footycollect-api/internal/imaging"
	"github.com/footycollect/footycollect-api/internal/jobs"
	"github.com/footycollect/footycollect-api/internal/metrics"
	"github.com/footycollect/footycollect-api/internal/models"
	"github.com/footycollect/footycollect-api/internal/repositories"
	"github.com/footycollect/footycollect-api/internal/storage"
)

const photoFolder = "item_photos"

// PhotoService manages item photos: storage, ordering and the main photo.
type PhotoService interface {
	CreatePhoto(ctx context.Context, userID, itemID uuid.UUID, upload PhotoUpload) (*models.Photo, error)
	UploadUnattachedPhoto(ctx context.Context, userID uuid.UUID, upload PhotoUpload) (*models.Photo, error)
	AttachPhotos(ctx context.Context, userID, itemID uuid.UUID, photoIDs []uuid.UUID) ([]models.Photo, error)
	UpdatePhoto(ctx context.Context, userID, photoID uuid.UUID, req *UpdatePhotoRequest) (*models.Photo, error)
	ReorderPhotos(ctx context.Context, userID, itemID uuid.UUID, photoIDs []uuid.UUID) ([]models.Photo, error)
	DeletePhoto(ctx context.Context, userID, photoID uuid.UUID) error
	GetPhotosForItem(ctx context.Context, viewerID *uuid.UUID, itemID uuid.UUID) ([]models.Photo, error)
	GetMainPhoto(ctx context.Context, viewerID *uuid.UUID, itemID uuid.UUID) (*models.Photo, error)
	SetMainPhoto(ctx context.Context, userID, itemID, photoID uuid.UUID) (*models.Photo, error)
	GetPhotoAnalytics(ctx context.Context, userID *uuid.UUID) (*PhotoAnalytics, error)
	PurgeOrphanedPhotos(ctx context.Context, olderThan time.Duration) (int, error)
	ConvertPhoto(ctx context.Context, photoID uuid.UUID) error
}

// PhotoUpload is one incoming image file.
type PhotoUpload struct {
	Filename string
	Caption  string
	Data     io.Reader
}

type UpdatePhotoRequest struct {
	Caption *string `json:"caption,omitempty" validate:"omitempty,max=255"`
}

type MonthCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

type PhotoAnalytics struct {
	TotalPhotos     int64        `json:"total_photos"`
	AttachedPhotos  int64        `json:"attached_photos"`
	OrphanedPhotos  int64        `json:"orphaned_photos"`
	OptimizedPhotos int64        `json:"optimized_photos"`
	UploadsByMonth  []MonthCount `json:"uploads_by_month"`
}

type photoService struct {
	db        *gorm.DB
	items     repositories.ItemRepository
	photos    repositories.PhotoRepository
	store     storage.ObjectStore
	jobs      jobs.Enqueuer
	cfg       config.PhotoConfig
	optimizer *imaging.Optimizer
}

func NewPhotoService(deps *Dependencies) PhotoService {
	return &photoService{
		db:        deps.DB,
		items:     deps.Items,
		photos:    deps.Photos,
		store:     deps.Store,
		jobs:      deps.Jobs,
		cfg:       deps.PhotoCfg,
		optimizer: imaging.NewOptimizer(deps.PhotoCfg.MaxDimension, deps.PhotoCfg.JPEGQuality),
	}
}

// readUpload buffers the file and checks its size and signature.
func (s *photoService) readUpload(upload PhotoUpload) ([]byte, string, error) {
	if upload.Data == nil {
		return nil, "", newValidationError("photo", "Photo file is required")
	}
	limit := s.cfg.MaxSizeBytes
	if limit <= 0 {
		limit = 15 * 1024 * 1024
	}
	data, err := io.ReadAll(io.LimitReader(upload.Data, limit+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, "", ErrImageTooLarge
	}

	contentType := storage.DetectImageType(data)
	if contentType == "" || !s.allowed(contentType) {
		return nil, "", ErrUnsupportedImage
	}
	return data, contentType, nil
}

func (s *photoService) allowed(contentType string) bool {
	if len(s.cfg.AllowedTypes) == 0 {
		return true
	}
	for _, t := range s.cfg.AllowedTypes {
		if strings.EqualFold(t, contentType) {
			return true
		}
	}
	return false
}

func (s *photoService) maxPerItem() int64 {
	if s.cfg.MaxPerItem <= 0 {
		return 10
	}
	return int64(s.cfg.MaxPerItem)
}

// storeObject uploads data and schedules its removal if the surrounding
// transaction rolls back.
func (s *photoService) storeObject(ctx context.Context, filename, contentType string, data []byte) (*storage.UploadResult, error) {
	if filename == "" {
		filename = "photo" + extensionFor(contentType)
	}
	key := storage.GenerateKey(photoFolder, filename)
	result, err := s.store.Upload(ctx, key, contentType, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to store photo: %w", err)
	}
	metrics.PhotosStored.Inc()

	database.AfterRollback(ctx, func() {
		enqueueNow(context.WithoutCancel(ctx), s.jobs, jobs.DeleteObjects(result.Key))
	})
	return result, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func (s *photoService) ownedItem(ctx context.Context, userID, itemID uuid.UUID) (*models.BaseItem, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load item: %w", err)
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	if item.UserID != userID {
		return nil, ErrForbiddenOperation
	}
	return item, nil
}

func (s *photoService) visibleItem(ctx context.Context, viewerID *uuid.UUID, itemID uuid.UUID) (*models.BaseItem, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load item: %w", err)
	}
	if item == nil || !item.VisibleTo(viewerID) {
		return nil, ErrItemNotFound
	}
	return item, nil
}

// CreatePhoto stores the file and appends it to the item's photos. The first
// photo of an item becomes its main photo.
func (s *photoService) CreatePhoto(ctx context.Context, userID, itemID uuid.UUID, upload PhotoUpload) (*models.Photo, error) {
	data, contentType, err := s.readUpload(upload)
	if err != nil {
		return nil, err
	}

	var photo *models.Photo
	err = database.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		if _, err := s.ownedItem(ctx, userID, itemID); err != nil {
			return err
		}
		count, err := s.photos.CountForOwner(ctx, models.OwnerKindBaseItem, itemID)
		if err != nil {
			return err
		}
		if count >= s.maxPerItem() {
			return ErrPhotoLimit
		}
		maxOrder, err := s.photos.MaxOrder(ctx, models.OwnerKindBaseItem, itemID)
		if err != nil {
			return err
		}

		stored, err := s.storeObject(ctx, upload.Filename, contentType, data)
		if err != nil {
			return err
		}

		owner := itemID
		uploader := userID
		photo = &models.Photo{
			OwnerKind:   models.OwnerKindBaseItem,
			OwnerID:     &owner,
			ImageKey:    stored.Key,
			ImageURL:    stored.URL,
			ContentType: contentType,
			SizeBytes:   int64(len(data)),
			Caption:     strings.TrimSpace(upload.Caption),
			Order:       maxOrder + 1,
			IsMain:      count == 0,
			UploadedAt:  time.Now().UTC(),
			UserID:      &uploader,
		}
		if err := s.photos.Create(ctx, photo); err != nil {
			return fmt.Errorf("failed to create photo: %w", err)
		}
		if photo.IsMain {
			if err := s.items.SetMainImageURL(ctx, itemID, photo.DisplayURL()); err != nil {
				return fmt.Errorf("failed to update main image: %w", err)
			}
		}

		enqueueAfterCommit(ctx, s.jobs, jobs.ConvertPhoto(photo.ID))
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"photo_id": photo.ID,
		"item_id":  itemID,
		"order":    photo.Order,
		"is_main":  photo.IsMain,
	}).Info("Photo created")
	return photo, nil
}

// UploadUnattachedPhoto stores a photo before its item exists. It stays an
// orphan until AttachPhotos claims it or the purge job removes it.
func (s *photoService) UploadUnattachedPhoto(ctx context.Context, userID uuid.UUID, upload PhotoUpload) (*models.Photo, error) {
	data, contentType, err := s.readUpload(upload)
	if err != nil {
		return nil, err
	}

	var photo *models.Photo
	err = database.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		stored, err := s.storeObject(ctx, upload.Filename, contentType, data)
		if err != nil {
			return err
		}
		uploader := userID
		photo = &models.Photo{
			OwnerKind:   models.OwnerKindBaseItem,
			ImageKey:    stored.Key,
			ImageURL:    stored.URL,
			ContentType: contentType,
			SizeBytes:   int64(len(data)),
			Caption:     strings.TrimSpace(upload.Caption),
			UploadedAt:  time.Now().UTC(),
			UserID:      &uploader,
		}
		if err := s.photos.Create(ctx, photo); err != nil {
			return fmt.Errorf("failed to create photo: %w", err)
		}
		enqueueAfterCommit(ctx, s.jobs, jobs.ConvertPhoto(photo.ID))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return photo, nil
}

// AttachPhotos moves unattached uploads onto an item, in the order given.
func (s *photoService) AttachPhotos(ctx context.Context, userID, itemID uuid.UUID, photoIDs []uuid.UUID) ([]models.Photo, error) {
	photoIDs = uniqueIDs(photoIDs)

	var attached []models.Photo
	err := database.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		if _, err := s.ownedItem(ctx, userID, itemID); err != nil {
			return err
		}
		if len(photoIDs) == 0 {
			return nil
		}

		found, err := s.photos.GetByIDs(ctx, photoIDs)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]models.Photo, len(found))
		for _, p := range found {
			byID[p.ID] = p
		}

		count, err := s.photos.CountForOwner(ctx, models.OwnerKindBaseItem, itemID)
		if err != nil {
			return err
		}
		if count+int64(len(photoIDs)) > s.maxPerItem() {
			return ErrPhotoLimit
		}
		maxOrder, err := s.photos.MaxOrder(ctx, models.OwnerKindBaseItem, itemID)
		if err != nil {
			return err
		}

		owner := itemID
		for i, id := range photoIDs {
			photo, ok := byID[id]
			if !ok {
				return ErrPhotoNotFound
			}
			if photo.OwnerID != nil || photo.UserID == nil || *photo.UserID != userID {
				return ErrForbiddenOperation
			}
			photo.OwnerKind = models.OwnerKindBaseItem
			photo.OwnerID = &owner
			photo.Order = maxOrder + 1 + i
			photo.IsMain = false
			if err := s.photos.Update(ctx, &photo); err != nil {
				return fmt.Errorf("failed to attach photo: %w", err)
			}
			attached = append(attached, photo)
		}

		if count == 0 {
			if err := s.setMain(ctx, itemID, &attached[0]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return attached, nil
}

func (s *photoService) setMain(ctx context.Context, itemID uuid.UUID, photo *models.Photo) error {
	if err := s.photos.SetMain(ctx, models.OwnerKindBaseItem, itemID, photo.ID); err != nil {
		return fmt.Errorf("failed to set main photo: %w", err)
	}
	photo.IsMain = true
	if err := s.items.SetMainImageURL(ctx, itemID, photo.DisplayURL()); err != nil {
		return fmt.Errorf("failed to update main image: %w", err)
	}
	return nil
}

// authorizePhoto checks that userID may modify photo: the item owner for
// attached photos, the uploader otherwise.
func (s *photoService) authorizePhoto(ctx context.Context, userID uuid.UUID, photo *models.Photo) error {
	if photo.OwnerID == nil {
		if photo.UserID == nil || *photo.UserID != userID {
			return ErrForbiddenOperation
		}
		return nil
	}
	_, err := s.ownedItem(ctx, userID, *photo.OwnerID)
	return err
}

func (s *photoService) UpdatePhoto(ctx context.Context, userID, photoID uuid.UUID, req *UpdatePhotoRequest) (*models.Photo, error) {
	if req == nil {
		req = &UpdatePhotoRequest{}
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	var photo *models.Photo
	err := database.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		var err error
		if photo, err = s.photos.GetByID(ctx, photoID); err != nil {
			return err
		}
		if photo == nil {
			return ErrPhotoNotFound
		}
		if err := s.authorizePhoto(ctx, userID, photo); err != nil {
			return err
		}
		if req.Caption != nil {
			photo.Caption = strings.TrimSpace(*req.Caption)
		}
		return s.photos.Update(ctx, photo)
	})
	if err != nil {
		return nil, err
	}
	return photo, nil
}

// ReorderPhotos assigns orders 0..n-1 following photoIDs, which must list
// every photo of the item exactly once.
func (s *photoService) ReorderPhotos(ctx context.Context, userID, itemID uuid.UUID, photoIDs []uuid.UUID) ([]models.Photo, error) {
	var ordered []models.Photo
	err := database.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		if _, err := s.ownedItem(ctx, userID, itemID); err != nil {
			return err
		}
		current, err := s.photos.ListForOwner(ctx, models.OwnerKindBaseItem, itemID)
		if err != nil {
			return err
		}
		if len(uniqueIDs(photoIDs)) != len(photoIDs) || len(photoIDs) != len(current) {
			return newValidationError("photo_ids", "Photo IDs must list every photo of the item exactly once")
		}

		byID := make(map[uuid.UUID]models.Photo, len(current))
		for _, p := range current {
			byID[p.ID] = p
		}
		for order, id := range photoIDs {
			photo, ok := byID[id]
			if !ok {
				return ErrPhotoNotOnItem
			}
			if photo.Order != order {
				if err := s.photos.UpdateOrder(ctx, id, order); err != nil {
					return err
				}
				photo.Order = order
			}
			ordered = append(ordered, photo)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ordered, nil
}

// DeletePhoto removes the photo, closes the gap in the display order and
// promotes a new main photo when the main one was removed.
func (s *photoService) DeletePhoto(ctx context.Context, userID, photoID uuid.UUID) error {
	return database.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		photo, err := s.photos.GetByID(ctx, photoID)
		if err != nil {
			return err
		}
		if photo == nil {
			return ErrPhotoNotFound
		}
		if err := s.authorizePhoto(ctx, userID, photo); err != nil {
			return err
		}
		return s.removePhoto(ctx, photo)
	})
}

// removePhoto must run inside a transaction.
func (s *photoService) removePhoto(ctx context.Context, photo *models.Photo) error {
	if err := s.photos.Delete(ctx, photo.ID); err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	enqueueAfterCommit(ctx, s.jobs, jobs.DeleteObjects(photo.Keys()...))

	if photo.OwnerID == nil {
		return nil
	}
	itemID := *photo.OwnerID

	remaining, err := s.photos.ListForOwner(ctx, models.OwnerKindBaseItem, itemID)
	if err != nil {
		return err
	}
	if err := s.renumber(ctx, remaining); err != nil {
		return err
	}

	if !photo.IsMain {
		return nil
	}
	if len(remaining) == 0 {
		return s.items.SetMainImageURL(ctx, itemID, "")
	}
	return s.setMain(ctx, itemID, &remaining[0])
}

// renumber rewrites display orders as 0..n-1 in the given sequence.
func (s *photoService) renumber(ctx context.Context, photos []models.Photo) error {
	for i := range photos {
		if photos[i].Order == i {
			continue
		}
		if err := s.photos.UpdateOrder(ctx, photos[i].ID, i); err != nil {
			return fmt.Errorf("failed to renumber photos: %w", err)
		}
		photos[i].Order = i
	}
	return nil
}

func (s *photoService) GetPhotosForItem(ctx context.Context, viewerID *uuid.UUID, itemID uuid.UUID) ([]models.Photo, error) {
	if _, err := s.visibleItem(ctx, viewerID, itemID); err != nil {
		return nil, err
	}
	return s.photos.ListForOwner(ctx, models.OwnerKindBaseItem, itemID)
}

func (s *photoService) GetMainPhoto(ctx context.Context, viewerID *uuid.UUID, itemID uuid.UUID) (*models.Photo, error) {
	if _, err := s.visibleItem(ctx, viewerID, itemID); err != nil {
		return nil, err
	}
	photo, err := s.photos.GetMain(ctx, models.OwnerKindBaseItem, itemID)
	if err != nil {
		return nil, err
	}
	if photo == nil {
		return nil, ErrPhotoNotFound
	}
	return photo, nil
}

// SetMainPhoto swaps the main flag in one transaction so the item never has
// zero or two main photos.
func (s *photoService) SetMainPhoto(ctx context.Context, userID, itemID, photoID uuid.UUID) (*models.Photo, error) {
	var photo *models.Photo
	err := database.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		if _, err := s.ownedItem(ctx, userID, itemID); err != nil {
			return err
		}
		var err error
		if photo, err = s.photos.GetByID(ctx, photoID); err != nil {
			return err
		}
		if photo == nil {
			return ErrPhotoNotFound
		}
		if photo.OwnerID == nil || *photo.OwnerID != itemID || photo.OwnerKind != models.OwnerKindBaseItem {
			return ErrPhotoNotOnItem
		}
		return s.setMain(ctx, itemID, photo)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"item_id": itemID, "photo_id": photoID}).Info("Main photo changed")
	return photo, nil
}

func (s *photoService) GetPhotoAnalytics(ctx context.Context, userID *uuid.UUID) (*PhotoAnalytics, error) {
	stats, err := s.photos.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &PhotoAnalytics{
		TotalPhotos:     stats.Total,
		AttachedPhotos:  stats.Attached,
		OrphanedPhotos:  stats.Orphaned,
		OptimizedPhotos: stats.Optimized,
		UploadsByMonth:  uploadsByMonth(stats.UploadTimes),
	}, nil
}

// uploadsByMonth buckets timestamps into YYYY-MM, oldest first. Done in Go so
// the query stays portable across postgres and sqlite.
func uploadsByMonth(times []time.Time) []MonthCount {
	counts := make(map[string]int64)
	for _, t := range times {
		counts[t.UTC().Format("2006-01")]++
	}
	out := make([]MonthCount, 0, len(counts))
	for month, n := range counts {
		out = append(out, MonthCount{Month: month, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// PurgeOrphanedPhotos deletes unattached uploads older than olderThan and
// returns how many were removed.
func (s *photoService) PurgeOrphanedPhotos(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-olderThan)

	var purged int
	err := database.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		orphans, err := s.photos.ListOrphans(ctx, cutoff)
		if err != nil {
			return err
		}
		var keys []string
		for i := range orphans {
			if err := s.photos.Delete(ctx, orphans[i].ID); err != nil {
				return err
			}
			keys = append(keys, orphans[i].Keys()...)
		}
		if len(keys) > 0 {
			enqueueAfterCommit(ctx, s.jobs, jobs.DeleteObjects(keys...))
		}
		purged = len(orphans)
		return nil
	})
	if err != nil {
		return 0, err
	}

	logrus.WithFields(logrus.Fields{"purged": purged, "cutoff": cutoff}).Info("Orphaned photos purged")
	return purged, nil
}

// ConvertPhoto produces the optimized JPEG variant of a photo. Photos deleted
// before the job runs are skipped.
func (s *photoService) ConvertPhoto(ctx context.Context, photoID uuid.UUID) error {
	log := logrus.WithField("photo_id", photoID)

	photo, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		return err
	}
	if photo == nil {
		log.Warn("Photo gone before conversion")
		return nil
	}
	if photo.OptimizedKey != "" {
		return nil
	}

	original, err := s.store.Download(ctx, photo.ImageKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			log.Warn("Original photo object missing")
			return nil
		}
		return fmt.Errorf("failed to download photo: %w", err)
	}
	defer original.Close()

	result, err := s.optimizer.Optimize(original)
	if err != nil {
		return fmt.Errorf("failed to optimize photo: %w", err)
	}
	stored, err := s.store.Upload(ctx, storage.OptimizedKey(photo.ImageKey), result.ContentType, bytes.NewReader(result.Data))
	if err != nil {
		return fmt.Errorf("failed to store optimized photo: %w", err)
	}

	err = database.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		current, err := s.photos.GetByID(ctx, photoID)
		if err != nil {
			return err
		}
		if current == nil {
			enqueueAfterCommit(ctx, s.jobs, jobs.DeleteObjects(stored.Key))
			return nil
		}
		current.OptimizedKey = stored.Key
		current.OptimizedURL = stored.URL
		if err := s.photos.Update(ctx, current); err != nil {
			return err
		}
		if current.IsMain && current.OwnerID != nil {
			return s.items.SetMainImageURL(ctx, *current.OwnerID, current.DisplayURL())
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"width":  result.Width,
		"height": result.Height,
		"bytes":  len(result.Data),
	}).Info("Photo optimized")
	return nil
}
