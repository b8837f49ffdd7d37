package controllers

import (
	"errors"
	"os"
	"time"

	"github.com/Nikhil-836/PassRotate/config"
	"github.com/Nikhil-836/PassRotate/middleware"
	"github.com/Nikhil-836/PassRotate/models"
	"github.com/Nikhil-836/PassRotate/utils"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterUser handles user registration. Creating an account also seeds the
// rotation state: a PasswordChange record and the first history entry, so the
// initial credential participates in reuse checks from day one.
func RegisterUser(c *gin.Context) {
	utils.LogInfo("RegisterUser called")

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Registration failed - Invalid request format: %v", err)
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	if valid, msg := utils.ValidateUsername(req.Username); !valid {
		utils.BadRequest(c, msg, nil)
		return
	}
	if valid, msg := utils.ValidateEmail(req.Email); !valid {
		utils.BadRequest(c, msg, nil)
		return
	}
	if valid, msg := utils.ValidatePassword(req.Password); !valid {
		utils.BadRequest(c, msg, nil)
		return
	}

	var existing models.User
	if err := config.DB.Where("email = ? OR username = ?", req.Email, req.Username).
		First(&existing).Error; err == nil {
		utils.LogError("Registration failed - Duplicate user: %s", req.Email)
		utils.Conflict(c, "An account with this email or username already exists", nil)
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.LogError("Failed to hash password during registration: %v", err)
		utils.InternalServerError(c, "Failed to process password", nil)
		return
	}

	now := time.Now()
	user := models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashedPassword,
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		record := models.PasswordChange{UserID: user.ID, LastChanged: now}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		return utils.RecordPassword(tx, user.ID, hashedPassword, now)
	})
	if err != nil {
		utils.LogError("Failed to register user %s: %v", req.Email, err)
		utils.InternalServerError(c, "Failed to create account", nil)
		return
	}

	utils.LogInfo("User registered successfully: %s", req.Email)
	utils.Created(c, utils.MsgRegisterSuccess, gin.H{
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

// LoginUser handles user login. This is the only point where the
// forced-change flag is raised: logging in with an expired password succeeds
// but marks the session so the rotation gate redirects every request until
// the password is changed.
func LoginUser(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Login attempt failed - Invalid request format: %v", err)
		utils.BadRequest(c, utils.ErrInvalidCredentials, err.Error())
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		utils.LogError("Login attempt failed - User not found: %s", req.Email)
		utils.Unauthorized(c, utils.ErrInvalidCredentials)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		utils.LogError("Login attempt failed - Invalid password for user: %s", req.Email)
		utils.Unauthorized(c, utils.ErrInvalidCredentials)
		return
	}

	if user.IsBlocked {
		utils.LogError("Login attempt failed - Blocked account: %s", req.Email)
		utils.Forbidden(c, utils.ErrUserBlocked)
		return
	}

	user.LastLoginAt = time.Now()
	if err := config.DB.Save(&user).Error; err != nil {
		utils.LogError("Failed to update last login time for user: %s", req.Email)
	}

	checker := utils.NewPasswordChecker(&user)
	result := checker.Evaluate(time.Now())

	data := gin.H{
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
		"password_status": result.Status(),
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionKeyAuthHash, utils.SessionAuthHash(&user))
	if result.Expired {
		session.Set(middleware.SessionKeyForceChange, true)
		data["message"] = utils.ErrPasswordExpiredMsg
		utils.LogInfo("User %d logged in with expired password, change forced", user.ID)
	} else if result.Warning {
		data["message"] = "Please change your password. It expires in " +
			utils.FormatRemaining(result.Remaining) + "."
	}
	if err := session.Save(); err != nil {
		utils.LogError("Failed to persist session for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to save session", nil)
		return
	}

	tokenString, err := utils.GenerateToken(&user)
	if err != nil {
		utils.LogError("Failed to generate JWT token for user: %s", req.Email)
		utils.InternalServerError(c, "Failed to generate token", err.Error())
		return
	}
	data["token"] = tokenString

	utils.LogInfo("User logged in successfully: %s", req.Email)
	utils.Success(c, utils.MsgLoginSuccess, data)
}

// LogoutUser blacklists the presented token and clears the session.
func LogoutUser(c *gin.Context) {
	utils.LogInfo("LogoutUser called")

	if tokenString, ok := middleware.BearerToken(c); ok {
		if err := utils.BlacklistToken(tokenString, utils.TokenExpiry(tokenString)); err != nil {
			utils.LogError("Failed to blacklist token on logout: %v", err)
		}
	}

	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		utils.LogError("Failed to clear session on logout: %v", err)
	}

	utils.Success(c, utils.MsgLogoutSuccess, nil)
}

// EnsureAdminUser creates the admin account from environment variables when
// it does not exist yet. Uses the same mutation point as registration so the
// admin's credential is covered by the rotation policy too.
func EnsureAdminUser() error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		utils.LogInfo("Admin seed skipped, ADMIN_EMAIL or ADMIN_PASSWORD not set")
		return nil
	}

	var existing models.User
	err := config.DB.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	now := time.Now()
	admin := models.User{
		Username: "admin",
		Email:    email,
		Password: hashedPassword,
		IsAdmin:  true,
	}
	return config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		record := models.PasswordChange{UserID: admin.ID, LastChanged: now}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		return utils.RecordPassword(tx, admin.ID, hashedPassword, now)
	})
}
