package routes

import (
	"standwithnepal-server/storage"
	"standwithnepal-server/utils"

	"github.com/kataras/iris/v12"
)

type uploadInput struct {
	Data     string `json:"data" validate:"required"` // base64 data URL or raw base64
	PublicID string `json:"public_id"`                // optional
	Type     string `json:"type"`                     // image (default) or video
}

// UploadMedia pushes a base64 photo or clip to Cloudinary and returns the
// hosted URL for use as an issue's image_path/video_path.
func UploadMedia(ctx iris.Context) {
	var in uploadInput
	if err := ctx.ReadJSON(&in); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	publicID := in.PublicID
	if publicID == "" {
		publicID = "issue_" + utils.GenerateShortToken(8)
	}

	url, err := storage.UploadBase64Media(in.Data, publicID, in.Type)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Upload failed", ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "url": url})
}
