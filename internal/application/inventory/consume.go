package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/kitchen-inventory/internal/application"
	dominv "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/inventory"
	domorder "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/outbox"
	domrecipe "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/recipe"
	"github.com/Zhima-Mochi/kitchen-inventory/internal/observability"
	"github.com/Zhima-Mochi/kitchen-inventory/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	consumeService = "inventory-service"
	useCaseConsume = "inventory.consume_for_order"
)

var errRecipeLookup = errors.New("inventory: recipe lookup failed")

// RecipeSource resolves the bill of materials for many menu items at once.
type RecipeSource interface {
	RecipesFor(ctx context.Context, menuItemIDs []string) (map[string][]domrecipe.Line, error)
}

type ConsumeCommand struct {
	OrderID string
	Lines   []domorder.Line
}

type ConsumptionResult struct {
	OrderID      string
	Demand       dominv.Demand
	Adjustments  []dominv.Adjustment
	Missing      []string
	Transactions []dominv.Transaction
}

var _ application.UseCase[ConsumeCommand, *ConsumptionResult] = (*ConsumeForOrderUseCase)(nil)

// ConsumeForOrderUseCase draws the ingredients of an order's recipes from
// stock. The demand is aggregated first so every ingredient gets exactly one
// write regardless of how many lines reference it.
type ConsumeForOrderUseCase struct {
	recipes     RecipeSource
	ingredients dominv.Repository
	ids         application.IDGenerator
	publisher   domoutbox.Publisher
	tel         observability.Observability

	log   observability.Logger
	meter *application.Meter
}

// NewConsumeForOrderUseCase wires the use case. The ingredient repository
// writes the consumption entries in the same atomic step as the stock.
func NewConsumeForOrderUseCase(
	recipes RecipeSource,
	ingredients dominv.Repository,
	ids application.IDGenerator,
	publisher domoutbox.Publisher,
	tel observability.Observability,
) *ConsumeForOrderUseCase {
	if tel == nil {
		tel = observability.Nop()
	}
	return &ConsumeForOrderUseCase{
		recipes:     recipes,
		ingredients: ingredients,
		ids:         ids,
		publisher:   application.NewTimedPublisher(publisher, tel),
		tel:         tel,
		log:         tel.Logger().With(observability.F("service", consumeService)),
		meter:       application.NewMeter(tel.Metrics(), useCaseConsume),
	}
}

func (uc *ConsumeForOrderUseCase) Execute(ctx context.Context, cmd ConsumeCommand) (_ *ConsumptionResult, err error) {
	ctx, span := uc.tel.Tracer().Start(ctx, application.SpanPrefix+"ConsumeForOrder",
		attribute.String("use_case", useCaseConsume),
		attribute.String("order.id", cmd.OrderID),
	)
	start := time.Now()
	outcome, statusText := application.OutcomeSuccess, "OK"
	var (
		result     = &ConsumptionResult{OrderID: cmd.OrderID}
		publishErr error
	)

	ctx, logger := logctx.Enrich(ctx, uc.log,
		observability.F("use_case", useCaseConsume),
		observability.F("order_id", cmd.OrderID),
	)

	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, statusText)
		} else {
			span.SetStatus(codes.Ok, statusText)
		}
		span.End()

		lat := time.Since(start).Seconds()
		uc.meter.Record(outcome, lat)

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
			observability.F("ingredients", len(result.Adjustments)),
		}
		if len(result.Missing) > 0 {
			fields = append(fields, observability.F("missing_ingredients", result.Missing))
		}
		if publishErr != nil {
			fields = append(fields, observability.F("event_publish_error", publishErr.Error()))
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	menuItemIDs := distinctMenuItems(cmd.Lines)
	if len(menuItemIDs) == 0 {
		statusText = "NO_LINES"
		return result, nil
	}

	recipes, rerr := uc.recipes.RecipesFor(ctx, menuItemIDs)
	if rerr != nil {
		outcome, statusText = application.OutcomeError, "RECIPE_LOOKUP_FAILED"
		return nil, fmt.Errorf("%w: %w", errRecipeLookup, rerr)
	}

	draws := make([]dominv.Draw, 0, len(cmd.Lines))
	for _, line := range cmd.Lines {
		for _, rl := range recipes[line.MenuItemID] {
			draws = append(draws, dominv.Draw{
				IngredientID: rl.IngredientID,
				PerUnit:      rl.QuantityPerUnit,
				Units:        line.Quantity,
			})
		}
	}
	result.Demand = dominv.Aggregate(draws)
	if len(result.Demand) == 0 {
		statusText = "NO_RECIPE"
		return result, nil
	}
	if err := ctx.Err(); err != nil {
		outcome, statusText = application.OutcomeError, "CONTEXT_CANCELED"
		return nil, err
	}

	var txs []dominv.Transaction
	journal := func(adj dominv.Adjustment) dominv.Transaction {
		tx := dominv.NewConsumption(uc.ids.NewID(), adj, result.Demand[adj.IngredientID], cmd.OrderID)
		txs = append(txs, tx)
		return tx
	}
	applied, missing, cerr := uc.ingredients.Consume(ctx, result.Demand, journal)
	if cerr != nil {
		outcome, statusText = application.OutcomeError, "STOCK_WRITE_FAILED"
		return nil, storeErr("consume stock", cerr)
	}
	result.Adjustments = applied
	result.Missing = missing
	if len(missing) > 0 {
		statusText = "INGREDIENTS_MISSING"
		logger.Warn("recipe_ingredient_missing", observability.F("ingredient_ids", missing))
	}

	result.Transactions = txs

	events := []domoutbox.Event{dominv.NewInventoryConsumedEvent(cmd.OrderID, applied, missing)}
	for _, adj := range applied {
		if adj.Worsened() {
			events = append(events, dominv.NewStockLowEvent(adj, cmd.OrderID))
		}
	}
	if publishErr = domoutbox.PublishAll(ctx, uc.publisher, events...); publishErr != nil {
		span.RecordError(publishErr)
		statusText = "EVENT_PUBLISH_FAILED"
	}

	span.AddEvent("inventory.consumed",
		trace.WithAttributes(
			attribute.Int("inventory.ingredients", len(applied)),
			attribute.Int("inventory.transactions", len(txs)),
		),
	)
	return result, nil
}

func distinctMenuItems(lines []domorder.Line) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l.MenuItemID == "" || l.Quantity <= 0 {
			continue
		}
		if _, ok := seen[l.MenuItemID]; ok {
			continue
		}
		seen[l.MenuItemID] = struct{}{}
		out = append(out, l.MenuItemID)
	}
	return out
}
