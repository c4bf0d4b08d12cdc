package routes

import (
	"encoding/json"
	"html"
	"strconv"
	"strings"

	"standwithnepal-server/models"
	"standwithnepal-server/services"
	"standwithnepal-server/storage"
	"standwithnepal-server/utils"

	"github.com/kataras/iris/v12"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IssuesGet dispatches read actions on /api/issues.
func IssuesGet(ctx iris.Context) {
	switch ctx.URLParam("action") {
	case "list":
		listIssues(ctx)
	case "get":
		getIssue(ctx)
	case "get_comments":
		getComments(ctx)
	case "get_nearby":
		getNearbyIssues(ctx)
	case "get_trending":
		getTrendingIssues(ctx)
	default:
		utils.CreateError(iris.StatusBadRequest, "Invalid action", ctx)
	}
}

// IssuesPost dispatches mutation actions on /api/issues.
func IssuesPost(ctx iris.Context) {
	switch ctx.URLParam("action") {
	case "create":
		createIssue(ctx)
	case "update_status":
		updateIssueStatus(ctx)
	case "upvote":
		upvoteIssue(ctx)
	case "add_comment":
		addComment(ctx)
	default:
		utils.CreateError(iris.StatusBadRequest, "Invalid action", ctx)
	}
}

func listIssues(ctx iris.Context) {
	filters := services.NewIssueFilters(
		ctx.URLParam("category"),
		ctx.URLParam("status"),
		ctx.URLParam("district"),
		ctx.URLParam("limit"),
		ctx.URLParam("offset"),
	)
	scope := utils.CurrentSession(ctx)

	cacheKey := filters.CacheKey(scope)
	if cached, ok := utils.CacheGet(cacheKey); ok {
		ctx.Header("X-Cache", "HIT")
		ctx.ContentType("application/json")
		ctx.WriteString(cached)
		return
	}

	rows, total, err := services.ListIssues(storage.DB, filters, scope)
	if err != nil {
		utils.LogDBError(ctx, "list issues", err)
		return
	}

	body, err := json.Marshal(iris.Map{
		"success": true,
		"issues":  rows,
		"pagination": iris.Map{
			"total":    total,
			"limit":    filters.Limit,
			"offset":   filters.Offset,
			"has_more": int64(filters.Offset+filters.Limit) < total,
		},
	})
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.CacheSet(cacheKey, string(body))
	ctx.Header("X-Cache", "MISS")
	ctx.ContentType("application/json")
	ctx.Write(body)
}

type issueUpdateRow struct {
	models.IssueUpdate
	AuthorName string `json:"author_name"`
}

type issueDetail struct {
	services.IssueRow
	UpdateRows []issueUpdateRow `json:"updates"`
}

func getIssue(ctx iris.Context) {
	id, err := strconv.ParseUint(ctx.URLParam("id"), 10, 32)
	if err != nil || id == 0 {
		utils.CreateError(iris.StatusBadRequest, "Invalid issue ID", ctx)
		return
	}

	var row services.IssueRow
	result := services.IssueRowQuery(storage.DB).Where("issues.id = ?", id).First(&row)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			utils.CreateError(iris.StatusNotFound, "Issue not found", ctx)
			return
		}
		utils.LogDBError(ctx, "get issue", result.Error)
		return
	}

	rows := []services.IssueRow{row}
	services.HideAnonymousReporters(rows)

	updates := []issueUpdateRow{}
	if err := storage.DB.Model(&models.IssueUpdate{}).
		Select("issue_updates.*, users.full_name AS author_name").
		Joins("LEFT JOIN users ON issue_updates.user_id = users.id").
		Where("issue_updates.issue_id = ?", id).
		Order("issue_updates.created_at ASC").
		Find(&updates).Error; err != nil {
		utils.LogDBError(ctx, "get issue updates", err)
		return
	}

	ctx.JSON(iris.Map{
		"success": true,
		"issue":   issueDetail{IssueRow: rows[0], UpdateRows: updates},
	})
}

type CreateIssueInput struct {
	Title        string   `json:"title" validate:"required,max=255"`
	Description  string   `json:"description" validate:"required"`
	Category     string   `json:"category" validate:"required"`
	Province     string   `json:"province" validate:"required"`
	District     string   `json:"district" validate:"required"`
	Municipality string   `json:"municipality" validate:"required"`
	Ward         string   `json:"ward" validate:"required"`
	Severity     string   `json:"severity"`
	Anonymous    bool     `json:"anonymous"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	ImagePath    string   `json:"image_path"`
	VideoPath    string   `json:"video_path"`
}

func createIssue(ctx iris.Context) {
	var input CreateIssueInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if !slices.Contains(models.IssueCategories, input.Category) {
		utils.CreateError(iris.StatusBadRequest, "Invalid category", ctx)
		return
	}
	severity := input.Severity
	if severity == "" {
		severity = "medium"
	}
	if !slices.Contains(models.IssueSeverities, severity) {
		utils.CreateError(iris.StatusBadRequest, "Invalid severity", ctx)
		return
	}

	provinceID, err := strconv.ParseUint(input.Province, 10, 32)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Invalid province", ctx)
		return
	}
	wardNo, err := strconv.Atoi(input.Ward)
	if err != nil || wardNo < 1 {
		utils.CreateError(iris.StatusBadRequest, "Invalid ward", ctx)
		return
	}

	scope := utils.CurrentSession(ctx)
	var userID *uint
	if !input.Anonymous && scope.LoggedIn {
		id := scope.UserID
		userID = &id
	}

	issue := models.Issue{
		Title:        sanitizeText(input.Title),
		Description:  sanitizeText(input.Description),
		Category:     input.Category,
		Severity:     severity,
		Status:       "new",
		ProvinceID:   uint(provinceID),
		District:     strings.TrimSpace(input.District),
		Municipality: strings.TrimSpace(input.Municipality),
		WardNo:       wardNo,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		ImagePath:    input.ImagePath,
		VideoPath:    input.VideoPath,
		Anonymous:    input.Anonymous,
		UserID:       userID,
	}

	ip := utils.ClientIP(ctx)
	err = storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&issue).Error; err != nil {
			return err
		}
		entry := models.ActivityLog{
			Action:    "issue_created",
			RelatedID: &issue.ID,
			UserID:    userID,
			IPAddress: ip,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		utils.LogDBError(ctx, "create issue", err)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{
		"success":  true,
		"message":  "Issue created successfully",
		"issue_id": issue.ID,
	})
}

type UpdateStatusInput struct {
	IssueID    uint   `json:"issue_id" validate:"required"`
	Status     string `json:"status" validate:"required"`
	UpdateText string `json:"update_text"`
}

func updateIssueStatus(ctx iris.Context) {
	scope := utils.CurrentSession(ctx)
	if !scope.IsOfficial() {
		utils.CreateUnauthorized(ctx)
		return
	}

	var input UpdateStatusInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if !slices.Contains(models.IssueStatuses, input.Status) {
		utils.CreateError(iris.StatusBadRequest, "Invalid status", ctx)
		return
	}

	var issue models.Issue
	if err := storage.DB.First(&issue, input.IssueID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.CreateError(iris.StatusNotFound, "Issue not found", ctx)
			return
		}
		utils.LogDBError(ctx, "update status", err)
		return
	}

	updateText := strings.TrimSpace(input.UpdateText)
	if updateText == "" {
		updateText = "Status changed to " + humanizeStatus(input.Status)
	}

	officialID := scope.UserID
	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Issue{}).Where("id = ?", issue.ID).
			Update("status", input.Status).Error; err != nil {
			return err
		}
		trail := models.IssueUpdate{
			IssueID:    issue.ID,
			UserID:     &officialID,
			UpdateText: sanitizeText(updateText),
			UpdateType: "status_change",
			OldStatus:  issue.Status,
			NewStatus:  input.Status,
		}
		return tx.Create(&trail).Error
	})
	if err != nil {
		utils.LogDBError(ctx, "update status", err)
		return
	}

	ctx.JSON(iris.Map{"success": true, "message": "Status updated successfully"})
}

type UpvoteInput struct {
	IssueID uint `json:"issue_id" validate:"required"`
}

func upvoteIssue(ctx iris.Context) {
	var input UpvoteInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var exists int64
	if err := storage.DB.Model(&models.Issue{}).Where("id = ?", input.IssueID).Count(&exists).Error; err != nil {
		utils.LogDBError(ctx, "upvote", err)
		return
	}
	if exists == 0 {
		utils.CreateError(iris.StatusNotFound, "Issue not found", ctx)
		return
	}

	// Identity is the logged-in user, or the caller IP for anonymous
	// upvotes. The partial unique indexes make the insert race-safe; a
	// conflict means this identity already upvoted.
	upvote := models.IssueUpvote{IssueID: input.IssueID}
	scope := utils.CurrentSession(ctx)
	if scope.LoggedIn {
		id := scope.UserID
		upvote.UserID = &id
	} else {
		ip := utils.ClientIP(ctx)
		upvote.IPAddress = &ip
	}

	result := storage.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&upvote)
	if result.Error != nil {
		utils.LogDBError(ctx, "upvote", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		ctx.JSON(iris.Map{"success": false, "message": "Already upvoted"})
		return
	}

	var count int64
	storage.DB.Model(&models.IssueUpvote{}).Where("issue_id = ?", input.IssueID).Count(&count)
	ctx.JSON(iris.Map{"success": true, "upvotes": count})
}

func sanitizeText(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}

// humanizeStatus turns "in-progress" into "In progress".
func humanizeStatus(status string) string {
	s := strings.ReplaceAll(status, "-", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
