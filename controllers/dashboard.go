package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tailorbook/services"
)

type DashboardOverview struct {
	TotalCustomers  int              `json:"totalCustomers"`
	DeletedRecords  int              `json:"deletedRecords"`
	PaymentPending  int              `json:"paymentPending"`
	DueThisWeek     map[string]int   `json:"dueThisWeek"` // delivery day -> count
	RecentCustomers []RecentCustomer `json:"recentCustomers"`
}

type RecentCustomer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DashboardController builds the shop overview from the record store.
type DashboardController struct {
	Store *services.Store
}

func (dc *DashboardController) GetDashboardOverview(c *gin.Context) {
	all, err := dc.Store.GetAll(c.Request.Context(), true)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	overview := DashboardOverview{DueThisWeek: map[string]int{}}
	for _, cust := range all {
		if cust.Deleted {
			overview.DeletedRecords++
			continue
		}
		overview.TotalCustomers++
		if !cust.PaymentReceived {
			overview.PaymentPending++
		}
		if cust.DeliveryDay != "" {
			overview.DueThisWeek[cust.DeliveryDay]++
		}
		if len(overview.RecentCustomers) < 5 {
			overview.RecentCustomers = append(overview.RecentCustomers, RecentCustomer{
				ID:   cust.ID,
				Name: cust.Name,
			})
		}
	}

	c.JSON(http.StatusOK, overview)
}
