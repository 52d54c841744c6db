package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"tailorbook/services"
	"tailorbook/utils"
)

// BackupController handles snapshots, interchange export/import and the
// clear-all operation.
type BackupController struct {
	Store *services.Store
	App   *services.Facade
}

// Create takes an immutable snapshot and returns its payload.
func (bc *BackupController) Create(c *gin.Context) {
	payload, err := bc.Store.CreateBackup(c.Request.Context())
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payload)
}

// List returns snapshot metadata (id and date), newest first.
func (bc *BackupController) List(c *gin.Context) {
	backups, err := bc.Store.ListBackups(c.Request.Context())
	if err != nil {
		respondStoreError(c, err)
		return
	}

	meta := make([]gin.H, len(backups))
	for i, b := range backups {
		meta[i] = gin.H{"id": b.ID, "date": b.Date}
	}
	c.JSON(http.StatusOK, meta)
}

// Export returns the interchange JSON document.
func (bc *BackupController) Export(c *gin.Context) {
	payload, err := bc.App.Export(c.Request.Context())
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="tailorbook-export.json"`)
	c.JSON(http.StatusOK, payload)
}

// Import reads an interchange document from the request body. Records
// flagged deleted in the source are skipped; individual record failures
// are counted, not fatal. A structurally invalid file aborts before any
// write.
func (bc *BackupController) Import(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Failed to read request body")
		return
	}

	result, err := bc.App.Import(c.Request.Context(), data)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ClearAll hard-deletes every customer record. Destructive enough to
// require an explicit confirmation header.
func (bc *BackupController) ClearAll(c *gin.Context) {
	if c.GetHeader("X-Confirm-Clear") != "yes" {
		utils.RespondWithError(c, http.StatusBadRequest, "Missing X-Confirm-Clear header")
		return
	}

	if err := bc.Store.ClearAll(c.Request.Context()); err != nil {
		respondStoreError(c, err)
		return
	}
	if err := bc.App.Reload(c.Request.Context()); err != nil {
		log.Warn().Err(err).Msg("customer cache reload failed")
	}

	c.JSON(http.StatusOK, gin.H{"message": "All customer records cleared"})
}
