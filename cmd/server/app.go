package main

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/Elmeric/dfacto/internal/config"
	"github.com/Elmeric/dfacto/internal/handlers"
	"github.com/Elmeric/dfacto/internal/repository/gormstore"
	"github.com/Elmeric/dfacto/internal/services"
	"github.com/Elmeric/dfacto/internal/view"
)

// App wires the store, the service facades and the JSON routes.
type App struct {
	mux *http.ServeMux
}

// NewApp creates the application handler with all routes configured.
func NewApp(db *gorm.DB, company config.CompanyConfig) *App {
	store := gormstore.New(db)

	clients := services.NewClientService(store)
	catalog := services.NewCatalogService(store)
	invoices := services.NewInvoiceService(store)
	baskets := services.NewBasketService(store)
	settings := services.NewSettingsService(store)

	issuer := view.Company{
		Name:    company.Name,
		Address: company.Address,
		ZipCode: company.ZipCode,
		City:    company.City,
		Email:   company.Email,
		Phone:   company.Phone,
		SIRET:   company.SIRET,
		VATID:   company.VATID,
	}

	app := &App{mux: http.NewServeMux()}
	app.setupRoutes(
		handlers.NewClientHandler(clients),
		handlers.NewCatalogHandler(catalog),
		handlers.NewInvoiceHandler(invoices, issuer),
		handlers.NewBasketHandler(baskets),
		handlers.NewSettingsHandler(settings),
	)
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

func (a *App) setupRoutes(
	ch *handlers.ClientHandler,
	gh *handlers.CatalogHandler,
	ih *handlers.InvoiceHandler,
	bh *handlers.BasketHandler,
	sh *handlers.SettingsHandler,
) {
	// Clients
	a.mux.HandleFunc("GET /clients", ch.List)
	a.mux.HandleFunc("POST /clients", ch.Create)
	a.mux.HandleFunc("GET /clients/{id}", ch.Get)
	a.mux.HandleFunc("PATCH /clients/{id}", ch.Update)
	a.mux.HandleFunc("DELETE /clients/{id}", ch.Delete)

	// Service catalog
	a.mux.HandleFunc("GET /services", gh.ListServices)
	a.mux.HandleFunc("POST /services", gh.CreateService)
	a.mux.HandleFunc("GET /services/{id}", gh.GetService)
	a.mux.HandleFunc("PATCH /services/{id}", gh.UpdateService)
	a.mux.HandleFunc("DELETE /services/{id}", gh.DeleteService)

	// VAT rates
	a.mux.HandleFunc("GET /vat-rates", gh.ListVatRates)
	a.mux.HandleFunc("POST /vat-rates", gh.CreateVatRate)
	a.mux.HandleFunc("POST /vat-rates/{id}/default", gh.SetDefaultVatRate)
	a.mux.HandleFunc("DELETE /vat-rates/{id}", gh.DeleteVatRate)

	// Invoices
	a.mux.HandleFunc("GET /invoices", ih.List)
	a.mux.HandleFunc("POST /invoices", ih.Create)
	a.mux.HandleFunc("GET /invoices/{id}", ih.Get)
	a.mux.HandleFunc("DELETE /invoices/{id}", ih.Delete)
	a.mux.HandleFunc("GET /invoices/{id}/view", ih.View)

	// Invoice items
	a.mux.HandleFunc("POST /invoices/{id}/items", ih.AddItem)
	a.mux.HandleFunc("PATCH /invoices/{id}/items/{itemID}", ih.UpdateItem)
	a.mux.HandleFunc("DELETE /invoices/{id}/items/{itemID}", ih.RemoveItem)

	// Invoice lifecycle
	a.mux.HandleFunc("POST /invoices/{id}/emit", ih.Emit)
	a.mux.HandleFunc("POST /invoices/{id}/pay", ih.MarkPaid)
	a.mux.HandleFunc("POST /invoices/{id}/cancel", ih.Cancel)

	// Baskets (one per client)
	a.mux.HandleFunc("GET /clients/{clientID}/basket", bh.Get)
	a.mux.HandleFunc("POST /clients/{clientID}/basket/items", bh.AddItem)
	a.mux.HandleFunc("PATCH /clients/{clientID}/basket/items/{serviceID}", bh.UpdateItem)
	a.mux.HandleFunc("DELETE /clients/{clientID}/basket/items/{serviceID}", bh.RemoveItem)
	a.mux.HandleFunc("DELETE /clients/{clientID}/basket", bh.Clear)
	a.mux.HandleFunc("POST /clients/{clientID}/basket/invoice", bh.Invoice)

	// Settings
	a.mux.HandleFunc("GET /settings", sh.Get)
	a.mux.HandleFunc("PATCH /settings", sh.Update)
}
