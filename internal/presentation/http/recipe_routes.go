package httppresentation

import (
	apprecipe "github.com/Zhima-Mochi/kitchen-inventory/internal/application/recipe"
	domrecipe "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/recipe"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

func (h *Handler) handleSaveMenuItem(c *fiber.Ctx) error {
	var req menuItemRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	item, err := domrecipe.NewMenuItem(req.ID, req.Name, req.Category, req.Price)
	if err != nil {
		return err
	}
	if err := h.resolver.SaveMenuItem(c.UserContext(), item); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(req)
}

func (h *Handler) handleGetRecipe(c *fiber.Ctx) error {
	lines, err := h.resolver.RecipeFor(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	out := make([]recipeLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, newRecipeLineResponse(l))
	}
	return c.JSON(out)
}

func (h *Handler) handleAddRecipeLine(c *fiber.Ctx) error {
	var req recipeLineRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	line, err := h.resolver.AddLine(c.UserContext(), apprecipe.AddLineInput{
		MenuItemID:      c.Params("id"),
		IngredientID:    req.IngredientID,
		QuantityPerUnit: req.QuantityPerUnit,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(newRecipeLineResponse(*line))
}

func (h *Handler) handleClearRecipe(c *fiber.Ctx) error {
	n, err := h.resolver.ClearRecipe(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"removed": n})
}

func (h *Handler) handleUpdateRecipeLine(c *fiber.Ctx) error {
	var req recipeLineRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	line, err := h.resolver.UpdateLineQuantity(c.UserContext(), c.Params("id"), req.QuantityPerUnit)
	if err != nil {
		return err
	}
	return c.JSON(newRecipeLineResponse(*line))
}

func (h *Handler) handleRemoveRecipeLine(c *fiber.Ctx) error {
	if err := h.resolver.RemoveLine(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// handleCosting takes ?margin=<percent>, defaulting to the configured margin.
func (h *Handler) handleCosting(c *fiber.Ctx) error {
	margin := h.defaultMargin
	if raw := c.Query("margin"); raw != "" {
		m, err := decimal.NewFromString(raw)
		if err != nil || m.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "margin must be a non-negative number")
		}
		margin = m
	}
	costing, err := h.resolver.SuggestedPrice(c.UserContext(), c.Params("id"), margin)
	if err != nil {
		return err
	}
	return c.JSON(newCostingResponse(costing))
}
