package inventory

import (
	"context"
	"sort"
	"strings"

	"github.com/Zhima-Mochi/kitchen-inventory/internal/application"
	dominv "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/inventory"
	domoutbox "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/outbox"
	"github.com/Zhima-Mochi/kitchen-inventory/internal/observability"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const ledgerService = "inventory-ledger"

type CreateIngredientInput struct {
	ID           string
	Name         string
	Unit         string
	CurrentStock decimal.Decimal
	MinimumStock decimal.Decimal
	CostPerUnit  decimal.Decimal
	SupplierID   string
}

// UpdateIngredientInput carries master data only. Stock levels change
// through Adjust so every change leaves a transaction behind.
type UpdateIngredientInput struct {
	ID           string
	Name         string
	Unit         string
	MinimumStock decimal.Decimal
	CostPerUnit  decimal.Decimal
	SupplierID   string
}

type AdjustInput struct {
	IngredientID string
	Amount       decimal.Decimal
	Mode         dominv.Mode
	Note         string
}

// StockLine is one row of the stock report.
type StockLine struct {
	Ingredient *dominv.Ingredient
	Status     dominv.Status
}

// Ledger owns direct stock administration. Unlike the order-driven draw,
// every failure here is returned to the caller.
type Ledger struct {
	ingredients  dominv.Repository
	transactions dominv.TransactionRepository
	ids          application.IDGenerator
	publisher    domoutbox.Publisher
	inst         application.Instrument
}

func NewLedger(
	ingredients dominv.Repository,
	transactions dominv.TransactionRepository,
	ids application.IDGenerator,
	publisher domoutbox.Publisher,
	tel observability.Observability,
) *Ledger {
	return &Ledger{
		ingredients:  ingredients,
		transactions: transactions,
		ids:          ids,
		publisher:    application.NewTimedPublisher(publisher, tel),
		inst:         application.NewInstrument(ledgerService, tel),
	}
}

func (l *Ledger) CreateIngredient(ctx context.Context, in CreateIngredientInput) (*dominv.Ingredient, error) {
	var created *dominv.Ingredient
	err := l.inst.Run(ctx, "inventory.ingredient_create", func(ctx context.Context) error {
		id := strings.TrimSpace(in.ID)
		if id == "" {
			id = l.ids.NewID()
		}
		ing, err := dominv.NewIngredient(id, in.Name, in.Unit, in.CurrentStock, in.MinimumStock, in.CostPerUnit, in.SupplierID)
		if err != nil {
			return err
		}
		if err := l.ingredients.Create(ctx, ing); err != nil {
			return storeErr("create ingredient", err)
		}
		created = ing
		return nil
	})
	return created, err
}

func (l *Ledger) UpdateIngredient(ctx context.Context, in UpdateIngredientInput) (*dominv.Ingredient, error) {
	var updated *dominv.Ingredient
	err := l.inst.Run(ctx, "inventory.ingredient_update", func(ctx context.Context) error {
		ing, err := l.ingredients.Get(ctx, in.ID)
		if err != nil {
			return storeErr("load ingredient", err)
		}
		ing.Name = strings.TrimSpace(in.Name)
		ing.Unit = strings.TrimSpace(in.Unit)
		ing.MinimumStock = in.MinimumStock
		ing.CostPerUnit = in.CostPerUnit
		ing.SupplierID = strings.TrimSpace(in.SupplierID)
		if err := ing.Validate(); err != nil {
			return err
		}
		ing.Touch()
		if err := l.ingredients.UpdateDetails(ctx, ing); err != nil {
			return storeErr("update ingredient", err)
		}
		updated = ing
		return nil
	}, attribute.String("ingredient.id", in.ID))
	return updated, err
}

func (l *Ledger) DeleteIngredient(ctx context.Context, id string) error {
	return l.inst.Run(ctx, "inventory.ingredient_delete", func(ctx context.Context) error {
		return storeErr("delete ingredient", l.ingredients.Delete(ctx, id))
	}, attribute.String("ingredient.id", id))
}

func (l *Ledger) GetIngredient(ctx context.Context, id string) (*dominv.Ingredient, error) {
	ing, err := l.ingredients.Get(ctx, id)
	if err != nil {
		return nil, storeErr("load ingredient", err)
	}
	return ing, nil
}

func (l *Ledger) ListIngredients(ctx context.Context) ([]*dominv.Ingredient, error) {
	list, err := l.ingredients.List(ctx)
	if err != nil {
		return nil, storeErr("list ingredients", err)
	}
	return list, nil
}

// Adjust applies one manual stock change and records it. The store computes
// the new level and writes the log entry in the same atomic step, so a
// failure leaves both untouched.
func (l *Ledger) Adjust(ctx context.Context, in AdjustInput) (dominv.Adjustment, error) {
	var adj dominv.Adjustment
	err := l.inst.Run(ctx, "inventory.adjust", func(ctx context.Context) error {
		if !in.Mode.Valid() {
			return dominv.ErrInvalidMode
		}
		note := strings.TrimSpace(in.Note)
		applied, err := l.ingredients.Adjust(ctx, in.IngredientID, in.Amount, in.Mode, func(a dominv.Adjustment) dominv.Transaction {
			return dominv.NewTransaction(l.ids.NewID(), in.Mode.TransactionType(), a, "", note)
		})
		if err != nil {
			return storeErr("adjust stock", err)
		}
		adj = applied

		if applied.Worsened() {
			if err := l.publisher.Publish(ctx, dominv.NewStockLowEvent(applied, "")); err != nil {
				l.inst.Logger(ctx).Warn("event_publish_failed",
					observability.F("event", dominv.StockLowEvent{}.EventName()),
					observability.F("ingredient_id", applied.IngredientID),
					observability.F("error", err.Error()),
				)
			}
		}
		return nil
	},
		attribute.String("ingredient.id", in.IngredientID),
		attribute.String("inventory.mode", string(in.Mode)),
	)
	if err != nil {
		return dominv.Adjustment{}, err
	}
	return adj, nil
}

// StockReport lists every ingredient with its status, ordered by name.
func (l *Ledger) StockReport(ctx context.Context) ([]StockLine, error) {
	list, err := l.ListIngredients(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]StockLine, 0, len(list))
	for _, ing := range list {
		out = append(out, StockLine{Ingredient: ing, Status: ing.Status()})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Ingredient.Name < out[j].Ingredient.Name
	})
	return out, nil
}

// LowStock returns the low and critical ingredients, critical first.
func (l *Ledger) LowStock(ctx context.Context) ([]StockLine, error) {
	report, err := l.StockReport(ctx)
	if err != nil {
		return nil, err
	}
	out := report[:0]
	for _, line := range report {
		if line.Status != dominv.StatusOK {
			out = append(out, line)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if si, sj := out[i].Status.Severity(), out[j].Status.Severity(); si != sj {
			return si > sj
		}
		return out[i].Ingredient.Name < out[j].Ingredient.Name
	})
	return out, nil
}

// History returns the transactions of one ingredient, newest first.
func (l *Ledger) History(ctx context.Context, ingredientID string) ([]dominv.Transaction, error) {
	txs, err := l.transactions.ListByIngredient(ctx, ingredientID)
	if err != nil {
		return nil, storeErr("list transactions", err)
	}
	return txs, nil
}

func (l *Ledger) OrderTransactions(ctx context.Context, orderID string) ([]dominv.Transaction, error) {
	txs, err := l.transactions.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, storeErr("list order transactions", err)
	}
	return txs, nil
}
