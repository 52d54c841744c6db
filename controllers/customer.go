package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"tailorbook/models"
	"tailorbook/services"
	"tailorbook/utils"
)

// CreateCustomerInput defines the expected JSON structure for creating a customer
type CreateCustomerInput struct {
	Name         string                `json:"name" binding:"required"`
	Phone        string                `json:"phone" binding:"required"`
	Notes        string                `json:"notes"`
	Measurements models.JSONB          `json:"measurements"`
	Models       *models.GarmentModels `json:"models"`
	SewingPrice  *int                  `json:"sewingPrice"`
	DeliveryDay  string                `json:"deliveryDay"`
}

// UpdateCustomerInput defines the expected JSON structure for updating a customer
type UpdateCustomerInput struct {
	Name         *string               `json:"name"`
	Phone        *string               `json:"phone"`
	Notes        *string               `json:"notes"`
	Measurements models.JSONB          `json:"measurements"`
	Models       *models.GarmentModels `json:"models"`
	SewingPrice  *int                  `json:"sewingPrice"`
	DeliveryDay  *string               `json:"deliveryDay"`
}

type AddOrderInput struct {
	Details string `json:"details" binding:"required"`
	Status  string `json:"status"`
}

type PaymentInput struct {
	Received bool `json:"received"`
}

// CustomerController exposes the record store to the UI.
type CustomerController struct {
	App   *services.Facade
	Store *services.Store
}

// reloadCache rebuilds the facade cache after a store-level write. The
// write is already durable, so a failed rebuild is logged, not surfaced.
func (cc *CustomerController) reloadCache(c *gin.Context) {
	if err := cc.App.Reload(c.Request.Context()); err != nil {
		log.Warn().Err(err).Msg("customer cache reload failed")
	}
}

// List returns customers: all of them, deleted ones included when
// includeDeleted=true, or a search result when q is set.
func (cc *CustomerController) List(c *gin.Context) {
	if q := c.Query("q"); q != "" {
		customers, err := cc.Store.Search(c.Request.Context(), q)
		if err != nil {
			respondStoreError(c, err)
			return
		}
		c.JSON(http.StatusOK, customers)
		return
	}

	includeDeleted := c.Query("includeDeleted") == "true"
	customers, err := cc.Store.GetAll(c.Request.Context(), includeDeleted)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

// Create adds a new customer record.
func (cc *CustomerController) Create(c *gin.Context) {
	var input CreateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	// Build the complete record up front and persist it in one save, so a
	// rejected create leaves no partial customer behind.
	customer := models.NewCustomer(input.Name, input.Phone)
	customer.Notes = input.Notes
	for k, v := range input.Measurements {
		customer.Measurements[k] = v
	}
	if input.Models != nil {
		customer.Models = *input.Models
	}
	customer.SewingPrice = input.SewingPrice
	customer.DeliveryDay = input.DeliveryDay

	saved, err := cc.App.AddRecord(c.Request.Context(), customer)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusCreated, saved)
}

// Get retrieves a specific customer by ID
func (cc *CustomerController) Get(c *gin.Context) {
	customer, err := cc.App.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// Update overwrites the provided fields and persists the record.
func (cc *CustomerController) Update(c *gin.Context) {
	var input UpdateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	customer, err := cc.Store.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	if customer == nil {
		utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		return
	}

	if input.Name != nil {
		customer.Name = *input.Name
	}
	if input.Phone != nil {
		customer.Phone = *input.Phone
	}
	if input.Notes != nil {
		customer.Notes = *input.Notes
	}
	if input.Measurements != nil {
		for k, v := range input.Measurements {
			customer.Measurements[k] = v
		}
	}
	if input.Models != nil {
		customer.Models = *input.Models
	}
	if input.SewingPrice != nil {
		customer.SewingPrice = input.SewingPrice
	}
	if input.DeliveryDay != nil {
		customer.DeliveryDay = *input.DeliveryDay
	}

	saved, err := cc.Store.Save(c.Request.Context(), customer)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	cc.reloadCache(c)

	c.JSON(http.StatusOK, saved)
}

// Delete soft deletes a customer
func (cc *CustomerController) Delete(c *gin.Context) {
	if err := cc.App.Remove(c.Request.Context(), c.Param("id")); err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully"})
}

// TogglePayment sets the payment flag; the payment date is stamped on
// false→true and cleared on true→false.
func (cc *CustomerController) TogglePayment(c *gin.Context) {
	var input PaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	customer, err := cc.Store.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	if customer == nil {
		utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		return
	}

	customer.SetPaymentReceived(input.Received)
	saved, err := cc.Store.Save(c.Request.Context(), customer)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	cc.reloadCache(c)

	c.JSON(http.StatusOK, saved)
}

// AddOrder appends one order sub-record to the customer.
func (cc *CustomerController) AddOrder(c *gin.Context) {
	var input AddOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	customer, err := cc.Store.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	if customer == nil {
		utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		return
	}

	customer.Orders = append(customer.Orders, models.NewOrder(input.Details, input.Status))
	saved, err := cc.Store.Save(c.Request.Context(), customer)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	cc.reloadCache(c)

	c.JSON(http.StatusCreated, saved)
}

// respondStoreError maps store-layer failures to HTTP statuses.
func respondStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotInitialized):
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Store not initialized")
	case errors.Is(err, services.ErrNotFound):
		utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
	case errors.Is(err, services.ErrInvalidImportFormat):
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid import format")
	default:
		if ve, ok := services.AsValidationError(err); ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":    "Validation failed",
				"messages": ve.Messages,
			})
			return
		}
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
	}
}
