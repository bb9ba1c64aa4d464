package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ombor-api/internal/application/dto"
	"github.com/jhoicas/Ombor-api/internal/application/inventory"
)

// TransactionHandler importaciones o ventas según kind; las rutas son idénticas para ambas.
type TransactionHandler struct {
	uc   *inventory.LedgerUseCase
	kind string
}

// NewTransactionHandler construye el handler para IMPORT o SALE.
func NewTransactionHandler(uc *inventory.LedgerUseCase, kind string) *TransactionHandler {
	return &TransactionHandler{uc: uc, kind: kind}
}

// Create godoc
// @Summary      Crear importación o venta
// @Description  Aplica todas las líneas en una sola transacción: o se registran todas o ninguna.
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransactionRequest  true  "counterparty_id, lines, payment_method, totals, additional_costs, discount_percent"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/imports [post]
// @Router       /api/sales [post]
func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	ids := []string{in.CounterpartyID}
	for _, l := range in.Lines {
		ids = append(ids, l.ProductID)
	}
	if err := bodyIDs(ids...); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.CreateTransactionFromRequest(c.Context(), companyID, userID, h.kind, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar importaciones o ventas
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        days   query  string  false  "today | last-week | last-month"
// @Param        from   query  string  false  "Desde (YYYY-MM-DD o RFC3339)"
// @Param        to     query  string  false  "Hasta (YYYY-MM-DD o RFC3339)"
// @Param        page   query  int     false  "Página"  default(1)
// @Param        limit  query  int     false  "Límite"  default(20)
// @Success      200    {object}  dto.TransactionListResponse
// @Failure      400    {object}  dto.ErrorResponse
// @Router       /api/imports [get]
// @Router       /api/sales [get]
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	from, to, err := queryRange(c)
	if err != nil {
		return respondError(c, err)
	}
	page := pageFrom(c)
	list, total, err := h.uc.ListTransactions(c.Context(), inventory.ListTransactionsInput{
		CompanyID: companyID,
		Kind:      h.kind,
		Days:      c.Query("days"),
		From:      from,
		To:        to,
		Limit:     page.Limit,
		Offset:    page.Offset(),
	})
	if err != nil {
		return respondError(c, err)
	}
	out := dto.TransactionListResponse{Items: make([]dto.TransactionResponse, 0, len(list)), Page: dto.NewPageResponse(page, total)}
	for _, t := range list {
		out.Items = append(out.Items, inventory.ToTransactionResponse(t, nil))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener importación o venta con sus asientos
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la transacción"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/imports/{id} [get]
// @Router       /api/sales/{id} [get]
func (h *TransactionHandler) GetByID(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	txn, entries, err := h.uc.GetTransaction(c.Context(), GetCompanyID(c), h.kind, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(inventory.ToTransactionResponse(txn, entries))
}

// UpdatePaymentMethod godoc
// @Summary      Cambiar método de pago
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la transacción"
// @Param        body  body  dto.UpdatePaymentMethodRequest  true  "payment_method"
// @Success      200   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/imports/{id} [patch]
// @Router       /api/sales/{id} [patch]
func (h *TransactionHandler) UpdatePaymentMethod(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in dto.UpdatePaymentMethodRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	txn, err := h.uc.UpdatePaymentMethod(c.Context(), GetCompanyID(c), h.kind, id, in.PaymentMethod)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(inventory.ToTransactionResponse(txn, nil))
}

// Reverse godoc
// @Summary      Revertir importación o venta
// @Description  Deshace todos sus asientos y borra la transacción. Falla con 409 si una entrada ya no está en stock.
// @Tags         transactions
// @Security     Bearer
// @Param        id   path  string  true  "ID de la transacción"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/imports/{id} [delete]
// @Router       /api/sales/{id} [delete]
func (h *TransactionHandler) Reverse(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.uc.ReverseTransaction(c.Context(), GetCompanyID(c), h.kind, id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SalesReport godoc
// @Summary      Reporte diario de ventas por moneda
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        from         query  string  false  "Desde (YYYY-MM-DD o RFC3339); por defecto hace un mes"
// @Param        to           query  string  false  "Hasta (YYYY-MM-DD o RFC3339)"
// @Param        product_id   query  string  false  "Filtrar por producto"
// @Param        customer_id  query  string  false  "Filtrar por cliente"
// @Success      200  {object}  dto.SalesReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sales/report [get]
func (h *TransactionHandler) SalesReport(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	from, to, err := queryRange(c)
	if err != nil {
		return respondError(c, err)
	}
	productID, customerID := c.Query("product_id"), c.Query("customer_id")
	if err := bodyIDs(productID, customerID); err != nil {
		return respondError(c, err)
	}
	rows, start, end, err := h.uc.SalesReport(c.Context(), companyID, productID, customerID, from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SalesReportResponse{From: start, To: end, Items: inventory.ToSalesReportItems(rows)})
}
