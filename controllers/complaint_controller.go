package controllers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cleancity/wastewatch-api/config"
	"github.com/cleancity/wastewatch-api/middleware"
	"github.com/cleancity/wastewatch-api/models"
	"github.com/cleancity/wastewatch-api/services"
)

// UpdateComplaintRequest represents the request body for the admin update
type UpdateComplaintRequest struct {
	Status     string `json:"status"`
	AdminNotes string `json:"adminNotes"`
}

// WasteTypeCount is one group of the per-category statistics
type WasteTypeCount struct {
	WasteType string `json:"wasteType"`
	Count     int64  `json:"count"`
}

// canAccessComplaint is the single ownership check used by read and delete:
// admins see everything, everyone else only their own records. Compares raw
// IDs, never the loaded owner struct.
func canAccessComplaint(role string, ownerID, actingUserID uint) bool {
	return role == models.RoleAdmin || ownerID == actingUserID
}

// withOwner loads the owner reference with the profile fields admins see
func withOwner(db *gorm.DB) *gorm.DB {
	return db.Preload("User", func(tx *gorm.DB) *gorm.DB {
		return tx.Select("id", "name", "email", "phone", "address")
	})
}

// CreateComplaint handles POST /api/complaints - submits a new complaint
// with an optional photo (multipart form)
func CreateComplaint(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "Could not extract user information",
		})
		return
	}

	wasteType := c.PostForm("wasteType")
	description := c.PostForm("description")
	location := c.PostForm("location")

	// Presence check for all three fields, location included even though the
	// model would also reject an empty one
	var missing []string
	if wasteType == "" {
		missing = append(missing, "wasteType")
	}
	if description == "" {
		missing = append(missing, "description")
	}
	if location == "" {
		missing = append(missing, "location")
	}
	if len(missing) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": fmt.Sprintf("Please provide all required fields: %s", strings.Join(missing, ", ")),
		})
		return
	}

	if !models.IsValidWasteType(wasteType) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": fmt.Sprintf("Invalid waste type. Must be one of: %s", strings.Join(models.WasteTypes, ", ")),
		})
		return
	}

	if len(description) > models.MaxDescriptionLength {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": fmt.Sprintf("Description cannot exceed %d characters", models.MaxDescriptionLength),
		})
		return
	}

	complaint := models.Complaint{
		UserID:      userID,
		WasteType:   wasteType,
		Description: description,
		Location:    location,
		Latitude:    parseCoordinate(c.PostForm("latitude")),
		Longitude:   parseCoordinate(c.PostForm("longitude")),
		Status:      models.StatusPending,
		AdminNotes:  "",
	}

	// Store the photo first so a stored path can be recorded with the row
	if fileHeader, err := c.FormFile("image"); err == nil {
		imageKey, err := services.GetImageService().UploadImage(fileHeader)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": err.Error(),
			})
			return
		}
		complaint.ImagePath = &imageKey
	}

	db := config.GetDB()
	if err := db.Create(&complaint).Error; err != nil {
		// Compensating cleanup: don't leave an orphaned upload behind.
		// Deletion failures are logged, never surfaced.
		if complaint.ImagePath != nil {
			if delErr := services.GetImageService().DeleteImage(*complaint.ImagePath); delErr != nil {
				log.Printf("Error deleting file: %v", delErr)
			}
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error creating complaint",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"message":   "Complaint submitted successfully",
		"complaint": complaint,
	})
}

// GetComplaints handles GET /api/complaints - all complaints with owner
// details for admins, own complaints for everyone else. Newest first, no
// pagination.
func GetComplaints(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "Could not extract user information",
		})
		return
	}
	role, _ := middleware.GetUserRole(c)

	db := config.GetDB()
	query := db.Model(&models.Complaint{})
	if role == models.RoleAdmin {
		query = withOwner(query)
	} else {
		query = query.Where("user_id = ?", userID)
	}

	var complaints []models.Complaint
	if err := query.Order("created_at DESC").Find(&complaints).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error fetching complaints",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"count":      len(complaints),
		"complaints": complaints,
	})
}

// GetComplaint handles GET /api/complaints/:id - single complaint for its
// owner or any admin
func GetComplaint(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "Could not extract user information",
		})
		return
	}
	role, _ := middleware.GetUserRole(c)

	complaintID, ok := parseComplaintID(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var complaint models.Complaint
	if err := withOwner(db).First(&complaint, complaintID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Complaint not found",
		})
		return
	}

	if !canAccessComplaint(role, complaint.UserID, userID) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"message": "Not authorized to view this complaint",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"complaint": complaint,
	})
}

// UpdateComplaint handles PATCH /api/complaints/:id - admin triage: status
// plus optional notes. Any status may move to any other status; there is no
// transition graph and no version check (last write wins).
func UpdateComplaint(c *gin.Context) {
	var req UpdateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Please provide a status",
		})
		return
	}

	if !models.IsValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid status. Must be Pending, In Progress, or Completed",
		})
		return
	}

	complaintID, ok := parseComplaintID(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var complaint models.Complaint
	if err := db.First(&complaint, complaintID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Complaint not found",
		})
		return
	}

	updates := map[string]interface{}{
		"status":      req.Status,
		"admin_notes": req.AdminNotes,
	}
	if err := db.Model(&complaint).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error updating complaint",
		})
		return
	}

	// Reload so the response carries the written values and fresh timestamps
	if err := db.First(&complaint, complaintID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error updating complaint",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Complaint updated successfully",
		"complaint": complaint,
	})
}

// DeleteComplaint handles DELETE /api/complaints/:id - owner or admin only.
// The backing image file goes first, best-effort.
func DeleteComplaint(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "Could not extract user information",
		})
		return
	}
	role, _ := middleware.GetUserRole(c)

	complaintID, ok := parseComplaintID(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var complaint models.Complaint
	if err := db.First(&complaint, complaintID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Complaint not found",
		})
		return
	}

	if !canAccessComplaint(role, complaint.UserID, userID) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"message": "Not authorized to delete this complaint",
		})
		return
	}

	// Delete image file if exists; failure never aborts the operation
	if complaint.ImagePath != nil {
		if delErr := services.GetImageService().DeleteImage(*complaint.ImagePath); delErr != nil {
			log.Printf("Error deleting image file: %v", delErr)
		}
	}

	if err := db.Delete(&complaint).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error deleting complaint",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Complaint deleted successfully",
	})
}

// GetComplaintStats handles GET /api/complaints/stats - admin dashboard
// aggregates. Group order of the per-category counts is whatever the
// database returns.
func GetComplaintStats(c *gin.Context) {
	db := config.GetDB()

	var total, pending, inProgress, completed int64
	counts := []struct {
		status string
		dest   *int64
	}{
		{models.StatusPending, &pending},
		{models.StatusInProgress, &inProgress},
		{models.StatusCompleted, &completed},
	}

	if err := db.Model(&models.Complaint{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error fetching statistics",
		})
		return
	}
	for _, cnt := range counts {
		if err := db.Model(&models.Complaint{}).Where("status = ?", cnt.status).Count(cnt.dest).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Error fetching statistics",
			})
			return
		}
	}

	var wasteTypeStats []WasteTypeCount
	if err := db.Model(&models.Complaint{}).
		Select("waste_type, count(*) as count").
		Group("waste_type").
		Scan(&wasteTypeStats).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error fetching statistics",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats": gin.H{
			"total":          total,
			"pending":        pending,
			"inProgress":     inProgress,
			"completed":      completed,
			"wasteTypeStats": wasteTypeStats,
		},
	})
}

// parseComplaintID reads the :id path parameter. An unparseable id cannot
// name any record, so it gets the same 404 as a missing one.
func parseComplaintID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Complaint not found",
		})
		return 0, false
	}
	return uint(id), true
}

// parseCoordinate turns an optional form value into a nullable float
func parseCoordinate(raw string) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
