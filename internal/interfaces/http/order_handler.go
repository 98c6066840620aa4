package http

import (
	"fmt"
	"path"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Mayorista-api/internal/application/billing"
	"github.com/jhoicas/Mayorista-api/internal/application/dto"
	"github.com/jhoicas/Mayorista-api/internal/application/sales"
)

// OrderHandler pedidos, cambios de estado y documentos.
type OrderHandler struct {
	uc   *sales.OrderUseCase
	docs *billing.DocumentUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *sales.OrderUseCase, docs *billing.DocumentUseCase) *OrderHandler {
	return &OrderHandler{uc: uc, docs: docs}
}

// Create godoc
// @Summary      Crear pedido directo
// @Description  Queda en pending (o draft con draft=true). Con payment_method=credit se aplica crédito.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "Cliente, medio de pago y líneas"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar pedidos
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        status       query  string  false  "Estado"
// @Param        customer_id  query  string  false  "Cliente"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.OrderListResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), c.Query("status"), c.Query("customer_id"), page(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateStatus godoc
// @Summary      Cambiar estado de un pedido
// @Description  Valida la tabla de transiciones y escribe el historial. Cancelar un pedido a crédito libera el cupo.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "ID del pedido"
// @Param        body  body  dto.UpdateOrderStatusRequest  true  "Nuevo estado"
// @Success      200   {object}  dto.OrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateOrderStatusRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.UpdateStatus(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// BulkUpdateStatus godoc
// @Summary      Cambio de estado masivo (hasta 100 pedidos)
// @Description  Cada pedido se valida por separado; la respuesta separa los aplicados de los rechazados.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkUpdateStatusRequest  true  "IDs y estado"
// @Success      200   {object}  dto.BulkUpdateStatusResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/orders/bulk-status [post]
func (h *OrderHandler) BulkUpdateStatus(c *fiber.Ctx) error {
	var in dto.BulkUpdateStatusRequest
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.BulkUpdateStatus(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// History GET /api/orders/:id/history
func (h *OrderHandler) History(c *fiber.Ctx) error {
	out, err := h.uc.History(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Document descarga el PDF del pedido.
// GET /api/orders/:id/documents/:kind (kind = invoice | packing_list)
func (h *OrderHandler) Document(c *fiber.Ctx) error {
	doc, data, err := h.docs.GetDocument(c.UserContext(), GetCompanyID(c), c.Params("id"), c.Params("kind"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, doc.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, path.Base(doc.StorageKey)))
	return c.Send(data)
}
