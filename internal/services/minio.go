package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/apperr"
	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/configuration"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// ObjectStore uploads objects to a bucket of an S3-compatible store and
// signs time-limited GET URLs for them.
type ObjectStore struct {
	client     *minio.Client
	bucketName string
	log        *zap.Logger
}

func NewObjectStore(cfg configuration.StorageConfig, log *zap.Logger) (*ObjectStore, error) {
	creds := credentials.NewFileAWSCredentials(cfg.CredentialsPath, "")
	if cfg.HasStaticKeys() {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  creds,
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create storage client: %v", apperr.ErrConfiguration, err)
	}

	return &ObjectStore{
		client:     client,
		bucketName: cfg.BucketName,
		log:        log,
	}, nil
}

// CheckConnection verifies that the bucket is reachable.
func (s *ObjectStore) CheckConnection(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("%w: failed to check bucket %s: %v", apperr.ErrCollaborator, s.bucketName, err)
	}
	if !exists {
		return fmt.Errorf("%w: bucket %s does not exist", apperr.ErrCollaborator, s.bucketName)
	}
	return nil
}

func (s *ObjectStore) UploadFile(ctx context.Context, localPath, objectName string) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	info, err := s.client.FPutObject(ctx, s.bucketName, objectName, localPath, minio.PutObjectOptions{
		ContentType: GetContentType(filepath.Ext(objectName)),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to upload %s: %v", apperr.ErrCollaborator, objectName, err)
	}
	s.log.Info("object uploaded",
		zap.String("bucket", s.bucketName),
		zap.String("object", objectName),
		zap.Int64("size", info.Size))
	return nil
}

// SignURL returns a presigned GET URL for objectName valid for ttl.
func (s *ObjectStore) SignURL(ctx context.Context, objectName string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucketName, objectName, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to sign %s: %v", apperr.ErrCollaborator, objectName, err)
	}
	s.log.Info("url signed", zap.String("object", objectName), zap.Duration("ttl", ttl))
	return u.String(), nil
}

// ListObjects returns the names of all objects in the bucket, sorted,
// without folder markers.
func (s *ObjectStore) ListObjects(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("%w: failed to list bucket %s: %v", apperr.ErrCollaborator, s.bucketName, obj.Err)
		}
		if obj.Key == "" || strings.HasSuffix(obj.Key, "/") {
			continue
		}
		names = append(names, obj.Key)
	}
	sort.Strings(names)
	return names, nil
}

// GetContentType Helper function to determine the content type
func GetContentType(extension string) string {
	switch strings.ToLower(extension) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	case ".zip":
		return "application/zip"
	case ".mp4":
		return "video/mp4"
	case ".mp3":
		return "audio/mpeg"
	default:
		return "application/octet-stream"
	}
}
