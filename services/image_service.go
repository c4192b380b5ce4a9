package services

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleancity/wastewatch-api/config"
	"github.com/cleancity/wastewatch-api/utils"
)

// ImageService handles complaint photo storage: upload, URL resolution and
// deletion. The key returned by UploadImage is what gets recorded on the
// complaint and later handed back to DeleteImage.
type ImageService interface {
	// UploadImage validates and stores an image file, returns the storage key
	UploadImage(fileHeader *multipart.FileHeader) (string, error)

	// GetImageURL generates a URL for accessing a stored image
	GetImageURL(imageKey string) (string, error)

	// DeleteImage removes an image from storage
	DeleteImage(imageKey string) error
}

var imageServiceInstance ImageService

// InitImageService initializes the image service for the configured backend
func InitImageService(cfg *config.Config) (ImageService, error) {
	switch cfg.StorageBackend {
	case "s3":
		s3Service, err := InitS3Service()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 backend: %w", err)
		}
		imageServiceInstance = &S3ImageService{s3Service: s3Service}
	default:
		imageServiceInstance = &LocalImageService{uploadDir: cfg.UploadDir}
	}
	return imageServiceInstance, nil
}

// GetImageService returns the initialized image service instance
func GetImageService() ImageService {
	return imageServiceInstance
}

// SetImageService sets the image service instance (primarily for testing)
func SetImageService(service ImageService) {
	imageServiceInstance = service
}

// LocalImageService implements ImageService on the local filesystem. Files
// land under uploadDir and are served back under /uploads.
type LocalImageService struct {
	uploadDir string
}

// NewLocalImageService creates a local disk image service rooted at uploadDir
func NewLocalImageService(uploadDir string) *LocalImageService {
	return &LocalImageService{uploadDir: uploadDir}
}

// UploadImage validates and saves an image to disk. The returned key is the
// public path the complaint record stores, e.g. /uploads/<filename>.
func (s *LocalImageService) UploadImage(fileHeader *multipart.FileHeader) (string, error) {
	// Validate the image file
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	filename, err := utils.SaveUploadedFile(fileHeader, s.uploadDir)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return utils.GetImageURL(filename), nil
}

// GetImageURL returns the public path as-is; local keys are already URLs
func (s *LocalImageService) GetImageURL(imageKey string) (string, error) {
	return imageKey, nil
}

// DeleteImage removes the backing file for a stored public path
func (s *LocalImageService) DeleteImage(imageKey string) error {
	if imageKey == "" {
		return nil
	}

	filename := strings.TrimPrefix(imageKey, utils.PublicUploadPrefix+"/")
	// Refuse anything that would escape the upload directory
	if filename == "" || strings.Contains(filename, "..") || strings.ContainsAny(filename, "/\\") {
		return fmt.Errorf("invalid image key: %q", imageKey)
	}

	if err := os.Remove(filepath.Join(s.uploadDir, filename)); err != nil {
		return fmt.Errorf("failed to delete image file: %w", err)
	}

	return nil
}

// S3ImageService implements ImageService using AWS S3 for storage
type S3ImageService struct {
	s3Service S3Interface
}

// NewS3ImageService creates an image service backed by the given S3 service
func NewS3ImageService(s3Service S3Interface) *S3ImageService {
	return &S3ImageService{s3Service: s3Service}
}

// UploadImage validates and uploads an image file to S3
func (s *S3ImageService) UploadImage(fileHeader *multipart.FileHeader) (string, error) {
	// Validate the image file
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	// Upload to S3
	s3Key, err := s.s3Service.UploadFile(fileHeader)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return s3Key, nil
}

// GetImageURL generates a presigned URL for accessing an image
func (s *S3ImageService) GetImageURL(imageKey string) (string, error) {
	if imageKey == "" {
		return "", nil
	}

	url, err := s.s3Service.GetPresignedURL(imageKey)
	if err != nil {
		return "", fmt.Errorf("failed to generate image URL: %w", err)
	}

	return url, nil
}

// DeleteImage deletes an image from S3
func (s *S3ImageService) DeleteImage(imageKey string) error {
	if imageKey == "" {
		return nil
	}

	if err := s.s3Service.DeleteFile(imageKey); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	return nil
}
