package routes

import (
	"encoding/json"
	"errors"

	"standwithnepal-server/models"
	"standwithnepal-server/storage"
	"standwithnepal-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AdminHandler dispatches /api/admin actions. The admin session middleware
// runs before this.
func AdminHandler(ctx iris.Context) {
	switch ctx.URLParam("action") {
	case "users":
		adminListUsers(ctx)
	case "verify_official":
		adminVerifyOfficial(ctx)
	case "moderate_comment":
		adminModerateComment(ctx)
	case "delete_comment":
		adminDeleteComment(ctx)
	case "activity":
		adminActivity(ctx)
	case "settings":
		adminListSettings(ctx)
	case "update_setting":
		adminUpdateSetting(ctx)
	default:
		utils.CreateError(iris.StatusBadRequest, "Invalid action", ctx)
	}
}

func adminListUsers(ctx iris.Context) {
	limit := ctx.URLParamIntDefault("limit", 50)
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := ctx.URLParamIntDefault("offset", 0)
	if offset < 0 {
		offset = 0
	}

	query := storage.DB.Model(&models.User{})
	if userType := ctx.URLParam("user_type"); userType != "" {
		query = query.Where("user_type = ?", userType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogDBError(ctx, "admin users", err)
		return
	}

	users := []models.User{}
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		utils.LogDBError(ctx, "admin users", err)
		return
	}

	ctx.JSON(iris.Map{
		"success": true,
		"users":   users,
		"pagination": iris.Map{
			"total":    total,
			"limit":    limit,
			"offset":   offset,
			"has_more": int64(offset+limit) < total,
		},
	})
}

type VerifyOfficialInput struct {
	UserID uint `json:"user_id" validate:"required"`
}

// adminVerifyOfficial flips the verified flag that gates official logins
// and drops the official a notification.
func adminVerifyOfficial(ctx iris.Context) {
	var input VerifyOfficialInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var user models.User
	if err := storage.DB.Where("id = ? AND user_type = 'official'", input.UserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.CreateError(iris.StatusNotFound, "Official not found", ctx)
			return
		}
		utils.LogDBError(ctx, "verify official", err)
		return
	}

	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
			Update("verified", true).Error; err != nil {
			return err
		}
		uid := user.ID
		notification := models.Notification{
			UserID:           &uid,
			UserType:         "official",
			Title:            "Account verified",
			Message:          "Your official account has been verified. You can now log in.",
			NotificationType: "success",
		}
		return tx.Create(&notification).Error
	})
	if err != nil {
		utils.LogDBError(ctx, "verify official", err)
		return
	}

	adminID := utils.CurrentSession(ctx).UserID
	utils.LogActivity(ctx, "official_verified", &user.ID, &adminID)

	ctx.JSON(iris.Map{"success": true, "message": "Official verified"})
}

type ModerateCommentInput struct {
	CommentID uint `json:"comment_id" validate:"required"`
}

// adminModerateComment approves a comment for display.
func adminModerateComment(ctx iris.Context) {
	var input ModerateCommentInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	result := storage.DB.Model(&models.IssueComment{}).
		Where("id = ?", input.CommentID).
		Update("moderated", true)
	if result.Error != nil {
		utils.LogDBError(ctx, "moderate comment", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.CreateError(iris.StatusNotFound, "Comment not found", ctx)
		return
	}

	adminID := utils.CurrentSession(ctx).UserID
	utils.LogActivity(ctx, "comment_moderated", &input.CommentID, &adminID)

	ctx.JSON(iris.Map{"success": true, "message": "Comment approved"})
}

func adminDeleteComment(ctx iris.Context) {
	var input ModerateCommentInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	result := storage.DB.Delete(&models.IssueComment{}, input.CommentID)
	if result.Error != nil {
		utils.LogDBError(ctx, "delete comment", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.CreateError(iris.StatusNotFound, "Comment not found", ctx)
		return
	}

	adminID := utils.CurrentSession(ctx).UserID
	utils.LogActivity(ctx, "comment_deleted", &input.CommentID, &adminID)

	ctx.JSON(iris.Map{"success": true, "message": "Comment deleted"})
}

func adminActivity(ctx iris.Context) {
	logs := []models.ActivityLog{}
	if err := storage.DB.Order("created_at DESC").Limit(100).Find(&logs).Error; err != nil {
		utils.LogDBError(ctx, "admin activity", err)
		return
	}
	ctx.JSON(iris.Map{"success": true, "activity": logs})
}

func adminListSettings(ctx iris.Context) {
	settings := []models.SystemSetting{}
	if err := storage.DB.Order("setting_key").Find(&settings).Error; err != nil {
		utils.LogDBError(ctx, "admin settings", err)
		return
	}
	ctx.JSON(iris.Map{"success": true, "settings": settings})
}

type UpdateSettingInput struct {
	Key         string          `json:"key" validate:"required,max=100"`
	Value       json.RawMessage `json:"value" validate:"required"`
	Description string          `json:"description"`
}

// adminUpdateSetting upserts one setting by key. Values are stored as raw
// JSON so settings can hold anything from flags to nested config blocks.
func adminUpdateSetting(ctx iris.Context) {
	var input UpdateSettingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	setting := models.SystemSetting{
		SettingKey:  input.Key,
		Value:       datatypes.JSON(input.Value),
		Description: input.Description,
	}
	err := storage.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "description", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		utils.LogDBError(ctx, "update setting", err)
		return
	}

	adminID := utils.CurrentSession(ctx).UserID
	utils.LogActivity(ctx, "setting_updated", nil, &adminID)

	ctx.JSON(iris.Map{"success": true, "message": "Setting updated"})
}
