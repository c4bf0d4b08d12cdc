package routes

import (
	"time"

	"standwithnepal-server/models"
	"standwithnepal-server/services"
	"standwithnepal-server/storage"
	"standwithnepal-server/utils"

	"github.com/kataras/iris/v12"
)

// AnalyticsHandler dispatches /api/analytics actions. Officials see their
// jurisdiction only; everyone else sees platform-wide numbers.
func AnalyticsHandler(ctx iris.Context) {
	switch ctx.URLParam("action") {
	case "dashboard_stats":
		getDashboardStats(ctx)
	case "category_distribution":
		getCategoryDistribution(ctx)
	case "resolution_trends":
		getResolutionTrends(ctx)
	case "regional_stats":
		getRegionalStats(ctx)
	default:
		utils.CreateError(iris.StatusBadRequest, "Invalid action", ctx)
	}
}

func getDashboardStats(ctx iris.Context) {
	scope := utils.CurrentSession(ctx)
	// No client filters here; only the forced jurisdiction predicates apply.
	preds := services.IssueFilters{}.Predicates(scope)

	var total int64
	if err := services.ApplyPredicates(storage.DB.Model(&models.Issue{}), preds).
		Count(&total).Error; err != nil {
		utils.LogDBError(ctx, "dashboard stats", err)
		return
	}

	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	var byStatus []statusCount
	if err := services.ApplyPredicates(storage.DB.Model(&models.Issue{}), preds).
		Select("status, COUNT(*) AS count").
		Group("status").
		Find(&byStatus).Error; err != nil {
		utils.LogDBError(ctx, "dashboard stats", err)
		return
	}

	stats := iris.Map{
		"total":        total,
		"new":          int64(0),
		"acknowledged": int64(0),
		"in_progress":  int64(0),
		"resolved":     int64(0),
	}
	for _, sc := range byStatus {
		switch sc.Status {
		case "new":
			stats["new"] = sc.Count
		case "acknowledged":
			stats["acknowledged"] = sc.Count
		case "in-progress":
			stats["in_progress"] = sc.Count
		case "resolved":
			stats["resolved"] = sc.Count
		}
	}

	ctx.JSON(iris.Map{"success": true, "stats": stats})
}

func getCategoryDistribution(ctx iris.Context) {
	type categoryCount struct {
		Category string `json:"category"`
		Count    int64  `json:"count"`
	}
	var categories []categoryCount
	if err := storage.DB.Model(&models.Issue{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Order("count DESC").
		Find(&categories).Error; err != nil {
		utils.LogDBError(ctx, "category distribution", err)
		return
	}
	ctx.JSON(iris.Map{"success": true, "categories": categories})
}

func getResolutionTrends(ctx iris.Context) {
	type monthlyTrend struct {
		Month    string `json:"month"`
		Reported int64  `json:"reported"`
		Resolved int64  `json:"resolved"`
	}
	since := time.Now().AddDate(0, -6, 0)
	var trends []monthlyTrend
	if err := storage.DB.Model(&models.Issue{}).
		Select(`to_char(created_at, 'YYYY-MM') AS month,
COUNT(*) AS reported,
SUM(CASE WHEN status = 'resolved' THEN 1 ELSE 0 END) AS resolved`).
		Where("created_at >= ?", since).
		Group("to_char(created_at, 'YYYY-MM')").
		Order("month").
		Find(&trends).Error; err != nil {
		utils.LogDBError(ctx, "resolution trends", err)
		return
	}
	ctx.JSON(iris.Map{"success": true, "trends": trends})
}

func getRegionalStats(ctx iris.Context) {
	type regionStat struct {
		District          string   `json:"district"`
		TotalIssues       int64    `json:"total_issues"`
		ResolvedIssues    int64    `json:"resolved_issues"`
		AvgResolutionDays *float64 `json:"avg_resolution_days"`
	}
	var regions []regionStat
	if err := storage.DB.Model(&models.Issue{}).
		Select(`district,
COUNT(*) AS total_issues,
SUM(CASE WHEN status = 'resolved' THEN 1 ELSE 0 END) AS resolved_issues,
ROUND(AVG(CASE WHEN status = 'resolved' THEN EXTRACT(EPOCH FROM (updated_at - created_at)) / 86400.0 END)::numeric, 1) AS avg_resolution_days`).
		Group("district").
		Order("total_issues DESC").
		Limit(10).
		Find(&regions).Error; err != nil {
		utils.LogDBError(ctx, "regional stats", err)
		return
	}
	ctx.JSON(iris.Map{"success": true, "regional_stats": regions})
}
