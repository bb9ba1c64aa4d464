package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ombor-api/internal/application/auth"
	"github.com/jhoicas/Ombor-api/internal/application/inventory"
	"github.com/jhoicas/Ombor-api/internal/application/usecase"
	"github.com/jhoicas/Ombor-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CompanyUC  *usecase.CompanyUseCase
	ProductUC  *usecase.ProductUseCase
	SupplierUC *usecase.SupplierUseCase
	CustomerUC *usecase.CustomerUseCase
	UserUC     *usecase.UserUseCase
	LedgerUC   *inventory.LedgerUseCase
	AuthUC     *auth.AuthUseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Companies (público: alta del tenant antes de tener usuarios)
	companies := api.Group("/companies")
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Get("/", companyHandler.List)
	companies.Post("/", companyHandler.Create)
	companies.Get("/:id", companyHandler.GetByID)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	managers := RequireRole(entity.RoleCEO, entity.RoleAdmin)

	userHandler := NewUserHandler(deps.UserUC)
	session := protected.Group("/auth")
	session.Get("/profile", userHandler.Profile)
	session.Get("/validate-token", userHandler.ValidateToken)

	users := protected.Group("/users", managers)
	users.Post("/", userHandler.Create)
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id", userHandler.Update)
	users.Delete("/:id", userHandler.Delete)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", managers, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", managers, productHandler.Update)
	products.Delete("/:id", managers, productHandler.Deactivate)

	suppliers := protected.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Post("/", supplierHandler.Create)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/:id", supplierHandler.GetByID)
	suppliers.Put("/:id", supplierHandler.Update)
	suppliers.Delete("/:id", supplierHandler.Delete)

	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Put("/:id", customerHandler.Update)
	customers.Delete("/:id", customerHandler.Delete)

	// Inventario: las rutas fijas van antes de /:productId.
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.LedgerUC)
	invGroup.Post("/incoming", inventoryHandler.RecordIncoming)
	invGroup.Post("/outgoing", inventoryHandler.RecordOutgoing)
	invGroup.Get("/reports/income", inventoryHandler.IncomeReport)
	invGroup.Get("/", inventoryHandler.ListBalances)
	invGroup.Get("/:productId", inventoryHandler.GetBalance)
	invGroup.Get("/:productId/reconcile", inventoryHandler.Reconcile)

	imports := protected.Group("/imports")
	importHandler := NewTransactionHandler(deps.LedgerUC, entity.TransactionKindImport)
	registerTransactionRoutes(imports, importHandler)

	sales := protected.Group("/sales")
	saleHandler := NewTransactionHandler(deps.LedgerUC, entity.TransactionKindSale)
	sales.Get("/report", saleHandler.SalesReport)
	registerTransactionRoutes(sales, saleHandler)
}

func registerTransactionRoutes(g fiber.Router, h *TransactionHandler) {
	g.Post("/", h.Create)
	g.Get("/", h.List)
	g.Get("/:id", h.GetByID)
	g.Patch("/:id", h.UpdatePaymentMethod)
	g.Delete("/:id", h.Reverse)
}
