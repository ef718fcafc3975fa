package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManoGuzman/inventory-system/internal/application/auth"
	"github.com/ManoGuzman/inventory-system/internal/application/inventory"
	"github.com/ManoGuzman/inventory-system/internal/application/usecase"
	"github.com/ManoGuzman/inventory-system/internal/domain/entity"
	"github.com/ManoGuzman/inventory-system/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.AuthUseCase
	ProductUC      *usecase.ProductUseCase
	ApplyMovement  *inventory.ApplyMovementUseCase
	MovementQuery  *inventory.MovementQueryUseCase
	Reconciliation *inventory.ReconciliationUseCase
	JWTSecret      string
	Logger         *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	api := app.Group("/api")
	authMw := AuthMiddleware(deps.JWTSecret)
	editors := RequireRole(entity.RoleAdmin, entity.RoleManager)
	admins := RequireRole(entity.RoleAdmin)

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC, log)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/me", authMw, authHandler.Me)
	authGroup.Post("/logout", authMw, authHandler.Logout)
	authGroup.Post("/register", authMw, admins, authHandler.Register)

	// Products (protegido; escritura por rol)
	productHandler := NewProductHandler(deps.ProductUC, log)
	products := api.Group("/products", authMw)
	products.Get("/", productHandler.List)
	products.Get("/categories", productHandler.Categories)
	products.Get("/code/:code", productHandler.GetByCode)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", editors, productHandler.Create)
	products.Put("/:id", editors, productHandler.Update)
	products.Delete("/:id", admins, productHandler.Delete)

	// Inventory movements (protegido, cualquier rol)
	inventoryHandler := NewInventoryHandler(deps.ApplyMovement, deps.MovementQuery, deps.Reconciliation, log)
	inv := api.Group("/inventory", authMw)
	inv.Post("/movement", inventoryHandler.ApplyMovement)
	inv.Get("/movement/:id", inventoryHandler.GetMovement)
	inv.Get("/movements", inventoryHandler.SearchMovements)
	inv.Get("/movements/product/:productId", inventoryHandler.MovementsByProduct)
	inv.Get("/movements/date-range", inventoryHandler.MovementsByDateRange)
	inv.Get("/movements/type/:movementType", inventoryHandler.MovementsByType)
	inv.Get("/products/:productId/reconciliation", inventoryHandler.Reconcile)
}
