package httppresentation

import (
	"errors"

	appinventory "github.com/Zhima-Mochi/kitchen-inventory/internal/application/inventory"
	apporder "github.com/Zhima-Mochi/kitchen-inventory/internal/application/order"
	apprecipe "github.com/Zhima-Mochi/kitchen-inventory/internal/application/recipe"
	dominv "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/inventory"
	domorder "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/order"
	domrecipe "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/recipe"
	"github.com/Zhima-Mochi/kitchen-inventory/internal/observability"
	"github.com/Zhima-Mochi/kitchen-inventory/internal/observability/logctx"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

const componentHTTPHandler = "http_server"

type Handler struct {
	ledger        *appinventory.Ledger
	resolver      *apprecipe.Resolver
	orders        *apporder.PlaceOrderUseCase
	defaultMargin decimal.Decimal
	log           observability.Logger
	tel           observability.Observability
}

func NewHandler(
	ledger *appinventory.Ledger,
	resolver *apprecipe.Resolver,
	orders *apporder.PlaceOrderUseCase,
	defaultMargin decimal.Decimal,
	tel observability.Observability,
) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Handler{
		ledger:        ledger,
		resolver:      resolver,
		orders:        orders,
		defaultMargin: defaultMargin,
		log:           tel.Logger().With(observability.F("component", componentHTTPHandler)),
		tel:           tel,
	}
}

// App builds the fiber application with every admin route mounted.
func (h *Handler) App() *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          h.handleError,
		DisableStartupMessage: true,
	})
	app.Use(ObservabilityMiddleware(h.log, h.tel))

	app.Get("/health", h.handleHealth)

	api := app.Group("/api")

	api.Get("/ingredients", h.handleListIngredients)
	api.Post("/ingredients", h.handleCreateIngredient)
	api.Get("/ingredients/:id", h.handleGetIngredient)
	api.Put("/ingredients/:id", h.handleUpdateIngredient)
	api.Delete("/ingredients/:id", h.handleDeleteIngredient)
	api.Post("/ingredients/:id/adjust", h.handleAdjust)
	api.Get("/ingredients/:id/transactions", h.handleIngredientTransactions)

	api.Get("/stock/report", h.handleStockReport)
	api.Get("/stock/low", h.handleLowStock)

	api.Post("/menu-items", h.handleSaveMenuItem)
	api.Get("/menu-items/:id/recipe", h.handleGetRecipe)
	api.Post("/menu-items/:id/recipe", h.handleAddRecipeLine)
	api.Delete("/menu-items/:id/recipe", h.handleClearRecipe)
	api.Get("/menu-items/:id/costing", h.handleCosting)
	api.Put("/recipe-lines/:id", h.handleUpdateRecipeLine)
	api.Delete("/recipe-lines/:id", h.handleRemoveRecipeLine)

	api.Post("/orders", h.handlePlaceOrder)
	api.Get("/orders/:id", h.handleGetOrder)
	api.Get("/orders/:id/transactions", h.handleOrderTransactions)
	api.Post("/prep-sheet", h.handlePrepSheet)

	return app
}

func (h *Handler) handleHealth(c *fiber.Ctx) error {
	return c.SendString("ok")
}

// handleError renders every error as {"error": msg}. Store failures are
// logged and hidden behind a generic message.
func (h *Handler) handleError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		logctx.FromOr(c.UserContext(), h.log).Error("http_handler_error",
			observability.F("route", c.Route().Path),
			observability.F("error", err),
		)
		msg = "internal error"
	}
	return c.Status(status).JSON(errorResponse{Error: msg})
}

func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, dominv.ErrNotFound),
		errors.Is(err, domrecipe.ErrNotFound),
		errors.Is(err, domrecipe.ErrMenuItemNotFound),
		errors.Is(err, domorder.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, dominv.ErrConflict),
		errors.Is(err, domrecipe.ErrDuplicateIngredient),
		errors.Is(err, domorder.ErrConflict),
		errors.Is(err, domorder.ErrInvalidStateTransition):
		return fiber.StatusConflict
	case errors.Is(err, dominv.ErrInvalidIngredient),
		errors.Is(err, dominv.ErrInvalidQuantity),
		errors.Is(err, dominv.ErrInvalidMode),
		errors.Is(err, domrecipe.ErrInvalidQuantity),
		errors.Is(err, domrecipe.ErrInvalidLine),
		errors.Is(err, domrecipe.ErrInvalidMenuItem),
		errors.Is(err, domorder.ErrEmptyOrder),
		errors.Is(err, domorder.ErrInvalidQuantity),
		errors.Is(err, domorder.ErrInvalidLine):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	return nil
}
