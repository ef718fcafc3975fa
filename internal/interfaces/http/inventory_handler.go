package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ManoGuzman/inventory-system/internal/application/dto"
	"github.com/ManoGuzman/inventory-system/internal/application/inventory"
	"github.com/ManoGuzman/inventory-system/internal/domain/entity"
	"github.com/ManoGuzman/inventory-system/pkg/logger"
)

const dateOnly = "2006-01-02"

// InventoryHandler maneja movimientos, consultas del libro y conciliación (protegido).
type InventoryHandler struct {
	engine    *inventory.ApplyMovementUseCase
	queries   *inventory.MovementQueryUseCase
	reconcile *inventory.ReconciliationUseCase
	log       *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	engine *inventory.ApplyMovementUseCase,
	queries *inventory.MovementQueryUseCase,
	reconcile *inventory.ReconciliationUseCase,
	log *logger.Logger,
) *InventoryHandler {
	return &InventoryHandler{engine: engine, queries: queries, reconcile: reconcile, log: log}
}

// ApplyMovement godoc
// @Summary      Registrar movimiento de inventario
// @Description  IN suma y OUT resta a la existencia del producto. Una salida mayor a la existencia se rechaza.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ApplyMovementRequest  true  "productId, type (IN|OUT), quantity"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/movement [post]
func (h *InventoryHandler) ApplyMovement(c *fiber.Ctx) error {
	var in dto.ApplyMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.engine.ApplyFromRequest(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetMovement godoc
// @Summary      Obtener movimiento por ID
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movement/{id} [get]
func (h *InventoryHandler) GetMovement(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "INVALID_ID", "id debe ser numérico")
	}
	out, err := h.queries.GetMovement(c.UserContext(), int64(id))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// SearchMovements godoc
// @Summary      Buscar movimientos
// @Description  Filtros opcionales combinables. Orden: fecha descendente, luego ID descendente.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        productId  query  int     false  "ID del producto"
// @Param        type       query  string  false  "IN u OUT"
// @Param        startDate  query  string  false  "RFC3339 o YYYY-MM-DD (inclusive)"
// @Param        endDate    query  string  false  "RFC3339 o YYYY-MM-DD (inclusive, fecha sola = fin del día)"
// @Param        limit      query  int     false  "Máximo de resultados"
// @Param        offset     query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) SearchMovements(c *fiber.Ctx) error {
	var filter entity.MovementFilter
	if raw := c.Query("productId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return badRequest(c, "INVALID_QUERY", "productId debe ser numérico")
		}
		filter.ProductID = &id
	}
	if raw := c.Query("type"); raw != "" {
		t, err := entity.ParseMovementType(raw)
		if err != nil {
			return badRequest(c, "INVALID_QUERY", "type debe ser IN u OUT")
		}
		filter.Type = &t
	}
	from, to, err := parseRange(c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		return badRequest(c, "INVALID_DATE", "fecha inválida: use RFC3339 o YYYY-MM-DD")
	}
	filter.From, filter.To = from, to

	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "INVALID_QUERY", "limit y offset deben ser numéricos")
	}
	page.Normalize()
	filter.Limit, filter.Offset = page.Limit, page.Offset

	out, err := h.queries.Search(c.UserContext(), filter)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// MovementsByProduct godoc
// @Summary      Movimientos de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        productId  path  int  true  "ID del producto"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/inventory/movements/product/{productId} [get]
func (h *InventoryHandler) MovementsByProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("productId")
	if err != nil {
		return badRequest(c, "INVALID_ID", "productId debe ser numérico")
	}
	out, err := h.queries.ListForProduct(c.UserContext(), int64(id))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// MovementsByDateRange godoc
// @Summary      Movimientos en un rango de fechas
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        startDate  query  string  true  "RFC3339 o YYYY-MM-DD"
// @Param        endDate    query  string  true  "RFC3339 o YYYY-MM-DD"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/date-range [get]
func (h *InventoryHandler) MovementsByDateRange(c *fiber.Ctx) error {
	start, end := c.Query("startDate"), c.Query("endDate")
	if start == "" || end == "" {
		return badRequest(c, "VALIDATION", "startDate y endDate son requeridos")
	}
	from, to, err := parseRange(start, end)
	if err != nil {
		return badRequest(c, "INVALID_DATE", "fecha inválida: use RFC3339 o YYYY-MM-DD")
	}
	out, err := h.queries.ListByDateRange(c.UserContext(), *from, *to)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// MovementsByType godoc
// @Summary      Movimientos por tipo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        movementType  path  string  true  "IN u OUT"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/type/{movementType} [get]
func (h *InventoryHandler) MovementsByType(c *fiber.Ctx) error {
	t, err := entity.ParseMovementType(c.Params("movementType"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.queries.ListByType(c.UserContext(), t)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Conciliar existencia contra el libro
// @Description  Compara la existencia con inicial + entradas - salidas.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        productId  path  int  true  "ID del producto"
// @Success      200  {object}  dto.ReconciliationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{productId}/reconciliation [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	id, err := c.ParamsInt("productId")
	if err != nil {
		return badRequest(c, "INVALID_ID", "productId debe ser numérico")
	}
	out, err := h.reconcile.Verify(c.UserContext(), int64(id))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// parseRange interpreta límites opcionales. Un endDate con solo fecha cubre el día completo.
func parseRange(start, end string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if start != "" {
		t, _, err := parseDate(start)
		if err != nil {
			return nil, nil, err
		}
		from = &t
	}
	if end != "" {
		t, dayOnly, err := parseDate(end)
		if err != nil {
			return nil, nil, err
		}
		if dayOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		to = &t
	}
	return from, to, nil
}

func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), false, nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t.UTC(), false, nil
	}
	t, err := time.Parse(dateOnly, s)
	if err != nil {
		return time.Time{}, false, err
	}
	return t.UTC(), true, nil
}
