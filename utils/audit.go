package utils

import (
	"log"

	"standwithnepal-server/models"
	"standwithnepal-server/storage"

	"github.com/kataras/iris/v12"
)

// LogActivity appends one activity_log row. Failures are logged and
// swallowed so a broken trail never fails the request.
func LogActivity(ctx iris.Context, action string, relatedID *uint, userID *uint) {
	entry := models.ActivityLog{
		Action:    action,
		RelatedID: relatedID,
		UserID:    userID,
		IPAddress: ClientIP(ctx),
	}
	if err := storage.DB.Create(&entry).Error; err != nil {
		log.Printf("failed to log action %s: %v", action, err)
	}
}
