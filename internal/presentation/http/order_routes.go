package httppresentation

import (
	apporder "github.com/Zhima-Mochi/kitchen-inventory/internal/application/order"

	"github.com/gofiber/fiber/v2"
)

// handlePlaceOrder answers as soon as the order is stored. Ingredient
// consumption happens in the background.
func (h *Handler) handlePlaceOrder(c *fiber.Ctx) error {
	var req orderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := h.orders.Execute(c.UserContext(), apporder.PlaceOrderInput{Lines: req.domainLines()})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(orderResponse{OrderID: res.OrderID, Status: res.Status})
}

func (h *Handler) handleGetOrder(c *fiber.Ctx) error {
	o, err := h.orders.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	resp := orderResponse{OrderID: o.ID, Status: o.Status, FailureReason: o.FailureReason}
	for _, l := range o.Lines {
		resp.Lines = append(resp.Lines, orderLineDTO{MenuItemID: l.MenuItemID, Quantity: l.Quantity})
	}
	return c.JSON(resp)
}

func (h *Handler) handleOrderTransactions(c *fiber.Ctx) error {
	txs, err := h.ledger.OrderTransactions(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(newTransactionsResponse(txs))
}

func (h *Handler) handlePrepSheet(c *fiber.Ctx) error {
	var req orderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	sheet, err := h.resolver.PrepSheet(c.UserContext(), req.domainLines())
	if err != nil {
		return err
	}
	return c.JSON(newPrepSheetResponse(sheet))
}
