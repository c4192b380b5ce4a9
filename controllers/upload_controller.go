package controllers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cleancity/wastewatch-api/config"
	"github.com/cleancity/wastewatch-api/utils"
)

// GetUploadedImage handles GET /uploads/:filename - serves complaint photos
// stored on local disk
func GetUploadedImage(c *gin.Context) {
	filename := c.Param("filename")

	// Validate filename is not empty
	if filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Filename is required",
		})
		return
	}

	// Security: Prevent directory traversal attacks
	if strings.Contains(filename, "..") || strings.Contains(filename, "/") || strings.Contains(filename, "\\") {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid filename",
		})
		return
	}

	// Validate file extension
	ext := strings.ToLower(filepath.Ext(filename))
	if !utils.AllowedImageFormats[ext] {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Only png, jpg and jpeg files are supported",
		})
		return
	}

	// Construct full file path
	filePath := filepath.Join(config.GetConfig().UploadDir, filename)

	// Check if file exists
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Image not found",
		})
		return
	}

	// Serve the file with appropriate headers
	c.Header("Cache-Control", "public, max-age=86400") // Cache for 24 hours
	c.File(filePath)
}
