package services

import (
	"fmt"
	"mime/multipart"
	"sync"

	"github.com/cleancity/wastewatch-api/utils"
)

// MockImageService is a mock implementation of ImageService for testing
type MockImageService struct {
	storedImages map[string][]byte // map of image key to file content
	deleteErr    error             // when set, DeleteImage fails with this error
	mu           sync.RWMutex
}

// NewMockImageService creates a new mock image service
func NewMockImageService() *MockImageService {
	return &MockImageService{
		storedImages: make(map[string][]byte),
	}
}

// SetAsMockForTesting sets this mock as the global image service instance for testing
func (m *MockImageService) SetAsMockForTesting() {
	SetImageService(m)
}

// FailDeletesWith makes subsequent DeleteImage calls fail with the given error
func (m *MockImageService) FailDeletesWith(err error) {
	m.mu.Lock()
	m.deleteErr = err
	m.mu.Unlock()
}

// UploadImage simulates storing an image
func (m *MockImageService) UploadImage(fileHeader *multipart.FileHeader) (string, error) {
	// Validate the image file
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	// Open and read the file
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content := make([]byte, fileHeader.Size)
	if _, err := file.Read(content); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	// Generate mock image key shaped like the local backend's keys
	imageKey := fmt.Sprintf("%s/mock_%s", utils.PublicUploadPrefix, fileHeader.Filename)

	m.mu.Lock()
	m.storedImages[imageKey] = content
	m.mu.Unlock()

	return imageKey, nil
}

// GetImageURL simulates generating a URL for an image
func (m *MockImageService) GetImageURL(imageKey string) (string, error) {
	if imageKey == "" {
		return "", nil
	}

	m.mu.RLock()
	_, exists := m.storedImages[imageKey]
	m.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("image not found in mock storage: %s", imageKey)
	}

	return imageKey, nil
}

// DeleteImage simulates deleting an image
func (m *MockImageService) DeleteImage(imageKey string) error {
	if imageKey == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.deleteErr != nil {
		return m.deleteErr
	}

	delete(m.storedImages, imageKey)
	return nil
}

// GetStoredImages returns all stored images (for testing assertions)
func (m *MockImageService) GetStoredImages() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Return a copy to prevent race conditions
	images := make(map[string][]byte, len(m.storedImages))
	for k, v := range m.storedImages {
		images[k] = v
	}
	return images
}

// ImageExists checks if an image exists in mock storage
func (m *MockImageService) ImageExists(imageKey string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.storedImages[imageKey]
	return exists
}

// Clear removes all images from mock storage
func (m *MockImageService) Clear() {
	m.mu.Lock()
	m.storedImages = make(map[string][]byte)
	m.deleteErr = nil
	m.mu.Unlock()
}
