package httppresentation

import (
	appinventory "github.com/Zhima-Mochi/kitchen-inventory/internal/application/inventory"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) handleListIngredients(c *fiber.Ctx) error {
	list, err := h.ledger.ListIngredients(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]ingredientResponse, 0, len(list))
	for _, ing := range list {
		out = append(out, newIngredientResponse(ing))
	}
	return c.JSON(out)
}

func (h *Handler) handleCreateIngredient(c *fiber.Ctx) error {
	var req ingredientRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ing, err := h.ledger.CreateIngredient(c.UserContext(), appinventory.CreateIngredientInput{
		ID:           req.ID,
		Name:         req.Name,
		Unit:         req.Unit,
		CurrentStock: req.CurrentStock,
		MinimumStock: req.MinimumStock,
		CostPerUnit:  req.CostPerUnit,
		SupplierID:   req.SupplierID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(newIngredientResponse(ing))
}

func (h *Handler) handleGetIngredient(c *fiber.Ctx) error {
	ing, err := h.ledger.GetIngredient(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(newIngredientResponse(ing))
}

// handleUpdateIngredient ignores current_stock; stock moves through /adjust.
func (h *Handler) handleUpdateIngredient(c *fiber.Ctx) error {
	var req ingredientRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ing, err := h.ledger.UpdateIngredient(c.UserContext(), appinventory.UpdateIngredientInput{
		ID:           c.Params("id"),
		Name:         req.Name,
		Unit:         req.Unit,
		MinimumStock: req.MinimumStock,
		CostPerUnit:  req.CostPerUnit,
		SupplierID:   req.SupplierID,
	})
	if err != nil {
		return err
	}
	return c.JSON(newIngredientResponse(ing))
}

func (h *Handler) handleDeleteIngredient(c *fiber.Ctx) error {
	if err := h.ledger.DeleteIngredient(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) handleAdjust(c *fiber.Ctx) error {
	var req adjustRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	adj, err := h.ledger.Adjust(c.UserContext(), appinventory.AdjustInput{
		IngredientID: c.Params("id"),
		Amount:       req.Amount,
		Mode:         req.Mode,
		Note:         req.Note,
	})
	if err != nil {
		return err
	}
	return c.JSON(adjustmentResponse{
		IngredientID: adj.IngredientID,
		Previous:     adj.Previous,
		New:          adj.New,
		Status:       adj.Status(),
	})
}

func (h *Handler) handleIngredientTransactions(c *fiber.Ctx) error {
	txs, err := h.ledger.History(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(newTransactionsResponse(txs))
}

func (h *Handler) handleStockReport(c *fiber.Ctx) error {
	report, err := h.ledger.StockReport(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(newStockResponse(report))
}

func (h *Handler) handleLowStock(c *fiber.Ctx) error {
	low, err := h.ledger.LowStock(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(newStockResponse(low))
}
