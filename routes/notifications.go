package routes

import (
	"standwithnepal-server/models"
	"standwithnepal-server/storage"
	"standwithnepal-server/utils"

	"github.com/kataras/iris/v12"
	"golang.org/x/exp/slices"
)

// NotificationsHandler dispatches /api/notifications actions. The
// authentication middleware runs before this.
func NotificationsHandler(ctx iris.Context) {
	switch ctx.URLParam("action") {
	case "get_notifications":
		getNotifications(ctx)
	case "get_unread_count":
		getUnreadCount(ctx)
	case "mark_read":
		markNotificationRead(ctx)
	case "create_notification":
		createNotification(ctx)
	default:
		utils.CreateError(iris.StatusBadRequest, "Invalid action", ctx)
	}
}

// notificationScope matches rows targeted at the user, their role, or
// everyone.
func notificationScope(scope utils.SessionInfo) (string, []interface{}) {
	return "user_id = ? OR user_type = ? OR user_type = 'all'", []interface{}{scope.UserID, scope.UserType}
}

func getNotifications(ctx iris.Context) {
	scope := utils.CurrentSession(ctx)

	where, args := notificationScope(scope)
	notifications := []models.Notification{}
	if err := storage.DB.Where(where, args...).
		Order("created_at DESC").
		Limit(50).
		Find(&notifications).Error; err != nil {
		utils.LogDBError(ctx, "get notifications", err)
		return
	}
	ctx.JSON(iris.Map{"success": true, "notifications": notifications})
}

func getUnreadCount(ctx iris.Context) {
	scope := utils.CurrentSession(ctx)

	where, args := notificationScope(scope)
	var count int64
	if err := storage.DB.Model(&models.Notification{}).
		Where("read_status = ?", false).
		Where(where, args...).
		Count(&count).Error; err != nil {
		utils.LogDBError(ctx, "unread count", err)
		return
	}
	ctx.JSON(iris.Map{"success": true, "count": count})
}

type MarkReadInput struct {
	NotificationID uint `json:"notification_id" validate:"required"`
}

func markNotificationRead(ctx iris.Context) {
	scope := utils.CurrentSession(ctx)

	var input MarkReadInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	// Only rows addressed to this user directly can be marked.
	if err := storage.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", input.NotificationID, scope.UserID).
		Update("read_status", true).Error; err != nil {
		utils.LogDBError(ctx, "mark read", err)
		return
	}
	ctx.JSON(iris.Map{"success": true, "message": "Notification marked as read"})
}

type CreateNotificationInput struct {
	UserID    *uint  `json:"user_id"`
	UserType  string `json:"user_type"`
	Title     string `json:"title" validate:"required,max=255"`
	Message   string `json:"message" validate:"required"`
	Type      string `json:"type"`
	RelatedID *uint  `json:"related_id"`
}

// createNotification publishes a targeted or broadcast notification.
// Admin only.
func createNotification(ctx iris.Context) {
	scope := utils.CurrentSession(ctx)
	if !scope.IsAdmin() {
		utils.CreateError(iris.StatusForbidden, "Admin access required", ctx)
		return
	}

	var input CreateNotificationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	userType := input.UserType
	if userType == "" {
		userType = "all"
	}
	if !slices.Contains([]string{"citizen", "official", "admin", "all"}, userType) {
		utils.CreateError(iris.StatusBadRequest, "Invalid user type", ctx)
		return
	}
	notifType := input.Type
	if notifType == "" {
		notifType = "info"
	}

	notification := models.Notification{
		UserID:           input.UserID,
		UserType:         userType,
		Title:            sanitizeText(input.Title),
		Message:          sanitizeText(input.Message),
		NotificationType: notifType,
		RelatedID:        input.RelatedID,
	}
	if err := storage.DB.Create(&notification).Error; err != nil {
		utils.LogDBError(ctx, "create notification", err)
		return
	}
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "message": "Notification created successfully"})
}
