package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ombor-api/internal/application/dto"
	"github.com/jhoicas/Ombor-api/internal/application/inventory"
	"github.com/jhoicas/Ombor-api/internal/domain/entity"
)

// InventoryHandler movimientos sueltos, balances y reportes de entradas (protegido).
type InventoryHandler struct {
	uc *inventory.LedgerUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.LedgerUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// RecordIncoming godoc
// @Summary      Registrar entrada de stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "product_id, quantity, unit_price, counterparty_id (proveedor)"
// @Success      201   {object}  dto.LedgerEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/incoming [post]
func (h *InventoryHandler) RecordIncoming(c *fiber.Ctx) error {
	return h.record(c, entity.EntryKindIncoming)
}

// RecordOutgoing godoc
// @Summary      Registrar salida de stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "product_id, quantity, unit_price"
// @Success      201   {object}  dto.LedgerEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/outgoing [post]
func (h *InventoryHandler) RecordOutgoing(c *fiber.Ctx) error {
	return h.record(c, entity.EntryKindOutgoing)
}

func (h *InventoryHandler) record(c *fiber.Ctx, kind string) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.RecordMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := bodyIDs(in.ProductID, in.CounterpartyID); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.RecordMovementFromRequest(c.Context(), companyID, userID, kind, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListBalances godoc
// @Summary      Listar balances de inventario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        search  query  string  false  "Filtro por nombre de producto"
// @Param        page    query  int     false  "Página"  default(1)
// @Param        limit   query  int     false  "Límite"  default(20)
// @Success      200     {object}  dto.BalanceListResponse
// @Router       /api/inventory [get]
func (h *InventoryHandler) ListBalances(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	page := pageFrom(c)
	list, total, err := h.uc.ListBalances(c.Context(), companyID, c.Query("search"), page.Limit, page.Offset())
	if err != nil {
		return respondError(c, err)
	}
	out := dto.BalanceListResponse{Items: make([]dto.BalanceResponse, 0, len(list)), Page: dto.NewPageResponse(page, total)}
	for _, b := range list {
		out.Items = append(out.Items, inventory.ToBalanceResponse(b))
	}
	return c.JSON(out)
}

// GetBalance godoc
// @Summary      Balance de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {object}  dto.BalanceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{productId} [get]
func (h *InventoryHandler) GetBalance(c *fiber.Ctx) error {
	productID, err := pathID(c, "productId")
	if err != nil {
		return respondError(c, err)
	}
	b, err := h.uc.GetBalance(c.Context(), GetCompanyID(c), productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(inventory.ToBalanceResponse(b))
}

// Reconcile godoc
// @Summary      Conciliar balance contra el libro
// @Description  Recalcula Σ entradas − Σ salidas y lo compara con la existencia guardada.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{productId}/reconcile [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	productID, err := pathID(c, "productId")
	if err != nil {
		return respondError(c, err)
	}
	r, err := h.uc.Reconcile(c.Context(), GetCompanyID(c), productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(r)
}

// IncomeReport godoc
// @Summary      Reporte diario de entradas
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        from        query  string  false  "Desde (YYYY-MM-DD o RFC3339); por defecto hace un mes"
// @Param        to          query  string  false  "Hasta (YYYY-MM-DD o RFC3339)"
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Success      200  {object}  dto.IncomeReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/reports/income [get]
func (h *InventoryHandler) IncomeReport(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	from, to, err := queryRange(c)
	if err != nil {
		return respondError(c, err)
	}
	productID := c.Query("product_id")
	if err := bodyIDs(productID); err != nil {
		return respondError(c, err)
	}
	rows, start, end, err := h.uc.IncomeReport(c.Context(), companyID, productID, from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.IncomeReportResponse{From: start, To: end, Items: inventory.ToIncomeReportItems(rows)})
}
