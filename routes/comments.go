package routes

import (
	"strconv"

	"standwithnepal-server/models"
	"standwithnepal-server/storage"
	"standwithnepal-server/utils"

	"github.com/kataras/iris/v12"
)

type AddCommentInput struct {
	IssueID   uint   `json:"issue_id" validate:"required"`
	Comment   string `json:"comment" validate:"required,max=1000"`
	Anonymous bool   `json:"anonymous"`
}

// addComment stores a comment awaiting moderation. It stays invisible to
// readers until an admin approves it.
func addComment(ctx iris.Context) {
	var input AddCommentInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var exists int64
	if err := storage.DB.Model(&models.Issue{}).Where("id = ?", input.IssueID).Count(&exists).Error; err != nil {
		utils.LogDBError(ctx, "add comment", err)
		return
	}
	if exists == 0 {
		utils.CreateError(iris.StatusNotFound, "Issue not found", ctx)
		return
	}

	scope := utils.CurrentSession(ctx)
	var userID *uint
	if !input.Anonymous && scope.LoggedIn {
		id := scope.UserID
		userID = &id
	}

	comment := models.IssueComment{
		IssueID:     input.IssueID,
		UserID:      userID,
		CommentText: sanitizeText(input.Comment),
		Anonymous:   input.Anonymous,
		Moderated:   false,
	}
	if err := storage.DB.Create(&comment).Error; err != nil {
		utils.LogDBError(ctx, "add comment", err)
		return
	}

	ctx.JSON(iris.Map{"success": true, "message": "Comment added successfully"})
}

type commentRow struct {
	models.IssueComment
	AuthorName string `json:"author_name"`
}

// getComments returns approved comments oldest first.
func getComments(ctx iris.Context) {
	issueID, err := strconv.ParseUint(ctx.URLParam("issue_id"), 10, 32)
	if err != nil || issueID == 0 {
		utils.CreateError(iris.StatusBadRequest, "Invalid issue ID", ctx)
		return
	}

	comments := []commentRow{}
	if err := storage.DB.Model(&models.IssueComment{}).
		Select("issue_comments.*, users.full_name AS author_name").
		Joins("LEFT JOIN users ON issue_comments.user_id = users.id").
		Where("issue_comments.issue_id = ? AND issue_comments.moderated = ?", issueID, true).
		Order("issue_comments.created_at ASC").
		Find(&comments).Error; err != nil {
		utils.LogDBError(ctx, "get comments", err)
		return
	}

	for i := range comments {
		if comments[i].Anonymous {
			comments[i].AuthorName = "Anonymous"
		}
	}

	ctx.JSON(iris.Map{"success": true, "comments": comments})
}
