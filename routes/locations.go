package routes

import (
	"standwithnepal-server/models"
	"standwithnepal-server/storage"
	"standwithnepal-server/utils"

	"github.com/kataras/iris/v12"
)

// LocationsHandler serves the fixed administrative hierarchy used by the
// frontend dropdowns.
func LocationsHandler(ctx iris.Context) {
	switch ctx.URLParam("action") {
	case "provinces":
		getProvinces(ctx)
	case "districts":
		getDistricts(ctx)
	case "municipalities":
		getMunicipalities(ctx)
	default:
		utils.CreateError(iris.StatusBadRequest, "Invalid action", ctx)
	}
}

func getProvinces(ctx iris.Context) {
	provinces := []models.Province{}
	if err := storage.DB.Order("id").Find(&provinces).Error; err != nil {
		utils.LogDBError(ctx, "get provinces", err)
		return
	}
	ctx.JSON(iris.Map{"success": true, "provinces": provinces})
}

func getDistricts(ctx iris.Context) {
	provinceID := ctx.URLParamIntDefault("province_id", 0)
	districts := []models.District{}
	if err := storage.DB.Where("province_id = ?", provinceID).Order("name").Find(&districts).Error; err != nil {
		utils.LogDBError(ctx, "get districts", err)
		return
	}
	ctx.JSON(iris.Map{"success": true, "districts": districts})
}

func getMunicipalities(ctx iris.Context) {
	districtID := ctx.URLParamIntDefault("district_id", 0)
	municipalities := []models.Municipality{}
	if err := storage.DB.Where("district_id = ?", districtID).Order("name").Find(&municipalities).Error; err != nil {
		utils.LogDBError(ctx, "get municipalities", err)
		return
	}
	ctx.JSON(iris.Map{"success": true, "municipalities": municipalities})
}
