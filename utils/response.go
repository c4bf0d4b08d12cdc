package utils

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

func CreateInternalServerError(ctx iris.Context) {
	CreateError(iris.StatusInternalServerError, "Internal server error", ctx)
}

func CreateUnauthorized(ctx iris.Context) {
	CreateError(iris.StatusUnauthorized, "Unauthorized", ctx)
}

func CreateError(status int, message string, ctx iris.Context) {
	ctx.StatusCode(status)
	ctx.JSON(iris.Map{"success": false, "message": message})
}

// LogDBError logs the driver detail server-side and returns a generic 500.
// Schema detail never reaches the client.
func LogDBError(ctx iris.Context, scope string, err error) {
	log.Printf("%s error: %v", scope, err)
	CreateInternalServerError(ctx)
}

type validationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Value string `json:"value"`
}

// HandleValidationErrors maps ReadJSON/validator failures to a 400 with the
// offending fields listed.
func HandleValidationErrors(err error, ctx iris.Context) {
	if errs, ok := err.(validator.ValidationErrors); ok {
		var out []validationError
		for _, e := range errs {
			out = append(out, validationError{Field: e.Field(), Tag: e.Tag(), Value: e.Param()})
		}
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"success": false, "message": "Validation failed", "errors": out})
		return
	}
	CreateError(iris.StatusBadRequest, "Invalid input", ctx)
}
