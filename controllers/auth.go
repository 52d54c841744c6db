package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"tailorbook/models"
	"tailorbook/utils"
)

type RegisterInput struct {
	Phone       string `json:"phone" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Password    string `json:"password" binding:"required,min=8"`
	ShopName    string `json:"shopName" binding:"required"`
	ShopAddress string `json:"shopAddress"`
}

type LoginInput struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthController manages the single shop-owner account.
type AuthController struct {
	DB *gorm.DB
}

// Register creates the owner account. The app is single-user, so this
// succeeds exactly once; any later call gets a conflict.
func (a *AuthController) Register(c *gin.Context) {
	var input RegisterInput

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var count int64
	if err := a.DB.Model(&models.User{}).Count(&count).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if count > 0 {
		utils.RespondWithError(c, http.StatusConflict, "Shop account already exists")
		return
	}

	newUser := models.User{
		Phone:       input.Phone,
		Name:        input.Name,
		Password:    input.Password, // Will be hashed in BeforeCreate hook
		ShopName:    input.ShopName,
		ShopAddress: input.ShopAddress,
	}

	if err := a.DB.Create(&newUser).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create account")
		return
	}

	token, err := utils.GenerateToken(newUser.ID.String())
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"token":   token,
		"user": gin.H{
			"id":       newUser.ID,
			"phone":    newUser.Phone,
			"name":     newUser.Name,
			"shopName": newUser.ShopName,
		},
	})
}

func (a *AuthController) Login(c *gin.Context) {
	var input LoginInput

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	var user models.User
	err := a.DB.Where("phone = ?", input.Phone).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	if !utils.CheckPasswordHash(input.Password, user.Password) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	now := time.Now()
	user.LastLogin = &now
	a.DB.Save(&user)

	token, err := utils.GenerateToken(user.ID.String())
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"phone":    user.Phone,
			"name":     user.Name,
			"shopName": user.ShopName,
		},
	})
}

func (a *AuthController) Me(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found in context")
		return
	}

	var user models.User
	if err := a.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          user.ID,
		"phone":       user.Phone,
		"name":        user.Name,
		"shopName":    user.ShopName,
		"shopAddress": user.ShopAddress,
		"lastLogin":   user.LastLogin,
	})
}
