package routes

import (
	"strconv"
	"time"

	"standwithnepal-server/services"
	"standwithnepal-server/storage"
	"standwithnepal-server/utils"

	"github.com/kataras/iris/v12"
)

// getNearbyIssues ranks issues by great-circle distance from the caller.
// Rows without coordinates never appear.
func getNearbyIssues(ctx iris.Context) {
	lat, _ := strconv.ParseFloat(ctx.URLParam("lat"), 64)
	lng, _ := strconv.ParseFloat(ctx.URLParam("lng"), 64)
	// (0,0) is treated as "not provided"; a genuine null-island report is
	// indistinguishable from an unset coordinate pair.
	if lat == 0 && lng == 0 {
		utils.CreateError(iris.StatusBadRequest, "Invalid coordinates", ctx)
		return
	}

	radius := 10.0
	if v := ctx.URLParam("radius"); v != "" {
		if r, err := strconv.ParseFloat(v, 64); err == nil {
			radius = r
		}
	}
	radius = services.ClampRadius(radius)

	rows := []services.IssueRow{}
	if err := services.IssueRowQuery(storage.DB).
		Where("issues.latitude IS NOT NULL AND issues.longitude IS NOT NULL").
		Find(&rows).Error; err != nil {
		utils.LogDBError(ctx, "nearby issues", err)
		return
	}

	services.HideAnonymousReporters(rows)
	nearby := services.RankByDistance(rows, lat, lng, radius)

	ctx.JSON(iris.Map{"success": true, "issues": nearby})
}

// getTrendingIssues returns the 10 highest-scoring issues from the last
// week, ranked by engagement over age.
func getTrendingIssues(ctx iris.Context) {
	now := time.Now()

	rows := []services.IssueRow{}
	if err := services.IssueRowQuery(storage.DB).
		Where("issues.created_at >= ?", services.TrendingWindowStart(now)).
		Find(&rows).Error; err != nil {
		utils.LogDBError(ctx, "trending issues", err)
		return
	}

	services.HideAnonymousReporters(rows)
	trending := services.RankTrending(rows, now)

	ctx.JSON(iris.Map{"success": true, "issues": trending})
}
