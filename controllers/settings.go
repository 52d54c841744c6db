package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tailorbook/services"
	"tailorbook/utils"
)

type UpdateSettingInput struct {
	Value string `json:"value" binding:"required"`
}

// SettingsController reads and writes shop settings.
type SettingsController struct {
	Store *services.Store
}

func (sc *SettingsController) List(c *gin.Context) {
	settings, err := sc.Store.GetAllSettings(c.Request.Context())
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// Get returns one setting; an unknown key is a 404, not a store error.
func (sc *SettingsController) Get(c *gin.Context) {
	setting, err := sc.Store.GetSetting(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	if setting == nil {
		utils.RespondWithError(c, http.StatusNotFound, "Setting not found")
		return
	}
	c.JSON(http.StatusOK, setting)
}

func (sc *SettingsController) Update(c *gin.Context) {
	var input UpdateSettingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	key := c.Param("key")
	if err := sc.Store.SaveSetting(c.Request.Context(), key, input.Value); err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Setting updated", "key": key, "value": input.Value})
}
