package controllers

import (
	"bytes"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tailorbook/models"
	"tailorbook/services"
	"tailorbook/utils"
)

const labelHTMLTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Label {{.Customer.ID}}</title>
  <style>
    body { font-family: -apple-system, "Segoe UI", Roboto, Arial, sans-serif; margin: 0; padding: 16px; }
    .label { border: 1px dashed #333; padding: 12px; width: 280px; }
    .label h1 { font-size: 18px; margin: 0 0 4px 0; }
    .label .id { font-size: 26px; font-weight: 700; letter-spacing: 2px; }
    .label .row { font-size: 13px; margin-top: 4px; }
  </style>
</head>
<body>
  <div class="label">
    <h1>{{.ShopName}}</h1>
    <div class="id">{{.Customer.ID}}</div>
    <div class="row">{{.Customer.Name}} &middot; {{.Customer.Phone}}</div>
    {{if .Customer.DeliveryDay}}<div class="row">Delivery: {{.Customer.DeliveryDay}}</div>{{end}}
    {{if .Customer.SewingPrice}}<div class="row">Price: {{.Currency}} {{.Customer.SewingPrice}}</div>{{end}}
  </div>
</body>
</html>`

const invoiceHTMLTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Invoice {{.Customer.ID}}</title>
  <style>
    body { font-family: -apple-system, "Segoe UI", Roboto, Arial, sans-serif; color: #1a1f36; margin: 0; padding: 24px; }
    .invoice { max-width: 560px; margin: 0 auto; border: 1px solid #e0e0e0; padding: 32px; }
    .header { display: flex; justify-content: space-between; margin-bottom: 24px; }
    .header h1 { font-size: 20px; margin: 0; }
    table { width: 100%; border-collapse: collapse; font-size: 13px; }
    th, td { text-align: left; padding: 6px 4px; border-bottom: 1px solid #eee; }
    .total { font-size: 16px; font-weight: 700; margin-top: 16px; text-align: right; }
    .paid { color: #0a7d33; } .unpaid { color: #b3261e; }
  </style>
</head>
<body>
  <div class="invoice">
    <div class="header">
      <div><h1>{{.ShopName}}</h1><div>{{.ShopAddress}}</div></div>
      <div>
        <div>No {{.Customer.ID}}</div>
        <div>{{.Date}}</div>
      </div>
    </div>
    <div>{{.Customer.Name}} &middot; {{.Customer.Phone}}</div>
    {{if .Customer.Notes}}<p>{{.Customer.Notes}}</p>{{end}}
    <table>
      <tr><th>Measurement</th><th>Value</th></tr>
      {{range $field, $value := .Measurements}}
      <tr><td>{{$field}}</td><td>{{$value}}</td></tr>
      {{end}}
    </table>
    {{if .Customer.Orders}}
    <table>
      <tr><th>Order</th><th>Status</th></tr>
      {{range .Customer.Orders}}
      <tr><td>{{.Details}}</td><td>{{.Status}}</td></tr>
      {{end}}
    </table>
    {{end}}
    {{if .Customer.SewingPrice}}<div class="total">{{.Currency}} {{.Customer.SewingPrice}}</div>{{end}}
    {{if .Customer.PaymentReceived}}
    <div class="total paid">PAID</div>
    {{else}}
    <div class="total unpaid">PAYMENT PENDING</div>
    {{end}}
  </div>
</body>
</html>`

var (
	labelTmpl   = template.Must(template.New("label").Parse(labelHTMLTemplate))
	invoiceTmpl = template.Must(template.New("invoice").Parse(invoiceHTMLTemplate))
)

type printData struct {
	Customer     *models.Customer
	Measurements map[string]interface{}
	ShopName     string
	ShopAddress  string
	Currency     string
	Date         string
}

// PrintController renders one record as a printable HTML document.
type PrintController struct {
	Store *services.Store
}

// Print renders ?kind=label (default) or ?kind=invoice for one customer.
// The document is a pure function of the normalized record plus shop
// settings.
func (pc *PrintController) Print(c *gin.Context) {
	customer, err := pc.Store.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	if customer == nil {
		utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		return
	}

	currency := "AFN"
	if setting, err := pc.Store.GetSetting(c.Request.Context(), "currency"); err == nil && setting != nil {
		currency = setting.Value
	}

	name, address := shopProfile(pc.Store)
	data := printData{
		Customer:     customer,
		Measurements: filledMeasurements(customer),
		ShopName:     name,
		ShopAddress:  address,
		Currency:     currency,
		Date:         time.Now().Format("2006-01-02"),
	}

	tmpl := labelTmpl
	if c.Query("kind") == "invoice" {
		tmpl = invoiceTmpl
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to render document")
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// filledMeasurements drops the empty placeholders so the printout only
// lists measurements that were actually taken.
func filledMeasurements(c *models.Customer) map[string]interface{} {
	out := map[string]interface{}{}
	for _, field := range models.MeasurementFields {
		v := c.Measurements[field]
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		if v != nil {
			out[field] = v
		}
	}
	return out
}

func shopProfile(store *services.Store) (name, address string) {
	var user models.User
	if err := store.DB().First(&user).Error; err != nil {
		return "TailorBook", ""
	}
	if user.ShopName == "" {
		return "TailorBook", user.ShopAddress
	}
	return user.ShopName, user.ShopAddress
}
