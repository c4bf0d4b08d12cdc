package routes

import (
	"errors"
	"strconv"
	"strings"

	"standwithnepal-server/models"
	"standwithnepal-server/storage"
	"standwithnepal-server/utils"

	"github.com/kataras/iris/v12"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	adminEmailDomain = "@standwithnepal.org"
	adminAccessCode  = "SWN2025"
)

// AuthHandler dispatches /api/auth actions for both GET and POST.
func AuthHandler(ctx iris.Context) {
	switch ctx.URLParam("action") {
	case "login":
		handleLogin(ctx)
	case "register":
		handleRegister(ctx)
	case "logout":
		handleLogout(ctx)
	case "check_session":
		checkSession(ctx)
	default:
		utils.CreateError(iris.StatusBadRequest, "Invalid action", ctx)
	}
}

type LoginInput struct {
	UserType   string `json:"user_type"`
	Email      string `json:"email"`
	Password   string `json:"password" validate:"required"`
	OfficialID string `json:"official_id"`
	Username   string `json:"username"`
	AdminCode  string `json:"admin_code"`
}

// handleLogin authenticates one of three credential paths selected by the
// user_type discriminator, then populates the cookie session.
func handleLogin(ctx iris.Context) {
	var input LoginInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	userType := input.UserType
	if userType == "" {
		userType = "citizen"
	}

	var user models.User
	var err error
	switch userType {
	case "citizen":
		err = storage.DB.Where("email = ? AND user_type = 'citizen'", input.Email).First(&user).Error
	case "official":
		// Unverified officials cannot log in at all.
		err = storage.DB.Where("official_id = ? AND user_type = 'official' AND verified = ?", input.OfficialID, true).First(&user).Error
	case "admin":
		err = storage.DB.Where("email = ? AND user_type = 'admin'", input.Username+adminEmailDomain).First(&user).Error
	default:
		utils.CreateError(iris.StatusBadRequest, "Invalid user type", ctx)
		return
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.CreateError(iris.StatusUnauthorized, "Invalid credentials", ctx)
			return
		}
		utils.LogDBError(ctx, "login", err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)) != nil {
		utils.CreateError(iris.StatusUnauthorized, "Invalid credentials", ctx)
		return
	}

	// Admins additionally present the shared organizational access code.
	if userType == "admin" && input.AdminCode != adminAccessCode {
		utils.CreateError(iris.StatusUnauthorized, "Invalid admin code", ctx)
		return
	}

	utils.StartSession(ctx, &user)

	area := user.District
	if user.WardNo != nil {
		area += " Ward-" + strconv.Itoa(*user.WardNo)
	}
	ctx.JSON(iris.Map{
		"success": true,
		"message": "Login successful",
		"user": iris.Map{
			"id":           user.ID,
			"name":         user.FullName,
			"type":         user.UserType,
			"jurisdiction": user.Jurisdiction,
			"area":         area,
		},
	})
}

type RegisterInput struct {
	FullName string `json:"full_name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" validate:"required,min=6"`
	Province *uint  `json:"province"`
}

// handleRegister creates a citizen account. Officials and admins are
// provisioned out-of-band.
func handleRegister(ctx iris.Context) {
	var input RegisterInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var existing models.User
	err := storage.DB.Where("email = ?", input.Email).First(&existing).Error
	if err == nil {
		utils.CreateError(iris.StatusBadRequest, "Email already registered", ctx)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.LogDBError(ctx, "register", err)
		return
	}

	hashed, hashErr := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if hashErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	user := models.User{
		FullName:   strings.TrimSpace(input.FullName),
		Email:      input.Email,
		Phone:      input.Phone,
		Password:   string(hashed),
		UserType:   "citizen",
		ProvinceID: input.Province,
	}
	if err := storage.DB.Create(&user).Error; err != nil {
		utils.LogDBError(ctx, "register", err)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "message": "Registration successful"})
}

func handleLogout(ctx iris.Context) {
	utils.DestroySession(ctx)
	ctx.JSON(iris.Map{"success": true, "message": "Logged out successfully"})
}

func checkSession(ctx iris.Context) {
	scope := utils.CurrentSession(ctx)
	if !scope.LoggedIn {
		utils.CreateError(iris.StatusUnauthorized, "Not logged in", ctx)
		return
	}
	ctx.JSON(iris.Map{
		"success": true,
		"user": iris.Map{
			"id":   scope.UserID,
			"name": scope.UserName,
			"type": scope.UserType,
		},
	})
}

