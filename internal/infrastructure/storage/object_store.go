package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"merovian.backend/internal/domain/entities"
	domainerrors "merovian.backend/internal/domain/errors"
	"merovian.backend/internal/infrastructure/models"
)

// PublicPathPrefix is the route serving public objects.
const PublicPathPrefix = "/storage/v1/object/public/"

// ObjectStore keeps blobs in the storage_objects table and builds their
// public URLs.
type ObjectStore struct {
	db      *gorm.DB
	baseURL string
}

func NewObjectStore(db *gorm.DB, publicBaseURL string) *ObjectStore {
	return &ObjectStore{db: db, baseURL: strings.TrimRight(publicBaseURL, "/")}
}

// Put writes obj, replacing any object at the same bucket and path.
func (s *ObjectStore) Put(ctx context.Context, obj *entities.StoredObject) error {
	if err := validateKey(obj.Bucket, obj.Path); err != nil {
		return err
	}
	if obj.CreatedAt.IsZero() {
		obj.CreatedAt = time.Now()
	}
	obj.Size = int64(len(obj.Data))
	m := &models.StorageObject{
		Bucket:      obj.Bucket,
		Path:        obj.Path,
		ContentType: obj.ContentType,
		Size:        obj.Size,
		Data:        obj.Data,
		CreatedAt:   obj.CreatedAt,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(m).Error
}

func (s *ObjectStore) Get(ctx context.Context, bucket, path string) (*entities.StoredObject, error) {
	var m models.StorageObject
	if err := s.db.WithContext(ctx).Where("bucket = ? AND path = ?", bucket, path).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &entities.StoredObject{
		Bucket:      m.Bucket,
		Path:        m.Path,
		ContentType: m.ContentType,
		Size:        m.Size,
		Data:        m.Data,
		CreatedAt:   m.CreatedAt,
	}, nil
}

// Upload stores data and returns its public URL.
func (s *ObjectStore) Upload(ctx context.Context, bucket, path, contentType string, data []byte) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	obj := &entities.StoredObject{Bucket: bucket, Path: path, ContentType: contentType, Data: data}
	if err := s.Put(ctx, obj); err != nil {
		return "", fmt.Errorf("upload %s/%s: %w", bucket, path, err)
	}
	return s.PublicURL(bucket, path), nil
}

// PublicURL resolves the URL an object is served from.
func (s *ObjectStore) PublicURL(bucket, path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.baseURL + PublicPathPrefix + url.PathEscape(bucket) + "/" + strings.Join(segments, "/")
}

func validateKey(bucket, path string) error {
	if bucket == "" || path == "" {
		return fmt.Errorf("%w: bucket and path are required", domainerrors.ErrInvalidInput)
	}
	if strings.HasPrefix(path, "/") || strings.Contains(path, "..") {
		return fmt.Errorf("%w: invalid object path", domainerrors.ErrInvalidInput)
	}
	return nil
}
