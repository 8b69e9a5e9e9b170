package recipe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Zhima-Mochi/kitchen-inventory/internal/application"
	dominv "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/inventory"
	domorder "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/order"
	domrecipe "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/recipe"
	"github.com/Zhima-Mochi/kitchen-inventory/internal/observability"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const resolverService = "recipe-resolver"

var hundred = decimal.NewFromInt(100)

// IngredientReader is the slice of the ingredient store the resolver needs.
// GetMany skips ids that do not exist.
type IngredientReader interface {
	Get(ctx context.Context, id string) (*dominv.Ingredient, error)
	GetMany(ctx context.Context, ids []string) ([]*dominv.Ingredient, error)
}

type AddLineInput struct {
	MenuItemID      string
	IngredientID    string
	QuantityPerUnit decimal.Decimal
}

// Costing is the cost of one unit of a menu item and the price a margin
// would put on it. SuggestedPrice is rounded to cents.
type Costing struct {
	MenuItemID     string
	Cost           decimal.Decimal
	MarginPercent  decimal.Decimal
	SuggestedPrice decimal.Decimal
}

type PrepIngredient struct {
	Name     string
	Unit     string
	Quantity decimal.Decimal
}

// PrepItem is one kitchen ticket row: the item, how many, and what goes in.
type PrepItem struct {
	MenuItemID   string
	MenuItemName string
	Category     string
	Quantity     int
	Ingredients  []PrepIngredient
}

// Resolver maps menu items to their ingredient lines. It holds no cache, so
// a mutation is visible to the very next lookup.
type Resolver struct {
	lines       domrecipe.Repository
	menu        domrecipe.MenuRepository
	ingredients IngredientReader
	ids         application.IDGenerator
	inst        application.Instrument
}

func NewResolver(
	lines domrecipe.Repository,
	menu domrecipe.MenuRepository,
	ingredients IngredientReader,
	ids application.IDGenerator,
	tel observability.Observability,
) *Resolver {
	return &Resolver{
		lines:       lines,
		menu:        menu,
		ingredients: ingredients,
		ids:         ids,
		inst:        application.NewInstrument(resolverService, tel),
	}
}

// RecipeFor returns the lines of one menu item in creation order. No lines
// and no error means the item has no recipe.
func (r *Resolver) RecipeFor(ctx context.Context, menuItemID string) ([]domrecipe.Line, error) {
	lines, err := r.lines.ListByMenuItem(ctx, menuItemID)
	if err != nil {
		return nil, storeErr("list recipe", err)
	}
	return lines, nil
}

// RecipesFor resolves many menu items in a single store round trip.
func (r *Resolver) RecipesFor(ctx context.Context, menuItemIDs []string) (map[string][]domrecipe.Line, error) {
	if len(menuItemIDs) == 0 {
		return map[string][]domrecipe.Line{}, nil
	}
	byItem, err := r.lines.ListByMenuItems(ctx, menuItemIDs)
	if err != nil {
		return nil, storeErr("list recipes", err)
	}
	return byItem, nil
}

// CostOf is the sum of quantity per unit times ingredient cost. A line
// pointing at a deleted ingredient fails with inventory.ErrNotFound.
func (r *Resolver) CostOf(ctx context.Context, menuItemID string) (decimal.Decimal, error) {
	lines, err := r.RecipeFor(ctx, menuItemID)
	if err != nil {
		return decimal.Zero, err
	}
	if len(lines) == 0 {
		return decimal.Zero, nil
	}

	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.IngredientID)
	}
	byID, err := r.ingredientsByID(ctx, ids)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, l := range lines {
		ing, ok := byID[l.IngredientID]
		if !ok {
			return decimal.Zero, fmt.Errorf("recipe: cost of %s: ingredient %s: %w", menuItemID, l.IngredientID, dominv.ErrNotFound)
		}
		total = total.Add(l.QuantityPerUnit.Mul(ing.CostPerUnit))
	}
	return total, nil
}

func (r *Resolver) SuggestedPrice(ctx context.Context, menuItemID string, marginPercent decimal.Decimal) (Costing, error) {
	cost, err := r.CostOf(ctx, menuItemID)
	if err != nil {
		return Costing{}, err
	}
	factor := decimal.NewFromInt(1).Add(marginPercent.Div(hundred))
	return Costing{
		MenuItemID:     menuItemID,
		Cost:           cost,
		MarginPercent:  marginPercent,
		SuggestedPrice: cost.Mul(factor).Round(2),
	}, nil
}

// AddLine puts an ingredient into a menu item's recipe. A pair that is
// already present fails with ErrDuplicateIngredient and stays as it was.
func (r *Resolver) AddLine(ctx context.Context, in AddLineInput) (*domrecipe.Line, error) {
	var added *domrecipe.Line
	err := r.inst.Run(ctx, "recipe.line_add", func(ctx context.Context) error {
		line, err := domrecipe.NewLine(r.ids.NewID(), in.MenuItemID, in.IngredientID, in.QuantityPerUnit)
		if err != nil {
			return err
		}
		if _, err := r.menu.Get(ctx, line.MenuItemID); err != nil {
			return storeErr("load menu item", err)
		}
		if _, err := r.ingredients.Get(ctx, line.IngredientID); err != nil {
			if errors.Is(err, dominv.ErrNotFound) {
				return fmt.Errorf("recipe: ingredient %s: %w", line.IngredientID, err)
			}
			return storeErr("load ingredient", err)
		}
		if err := r.lines.Add(ctx, line); err != nil {
			return storeErr("add line", err)
		}
		added = line
		return nil
	},
		attribute.String("menu_item.id", in.MenuItemID),
		attribute.String("ingredient.id", in.IngredientID),
	)
	return added, err
}

func (r *Resolver) UpdateLineQuantity(ctx context.Context, lineID string, qty decimal.Decimal) (*domrecipe.Line, error) {
	var updated *domrecipe.Line
	err := r.inst.Run(ctx, "recipe.line_update", func(ctx context.Context) error {
		if err := domrecipe.ValidQuantity(qty); err != nil {
			return err
		}
		if err := r.lines.UpdateQuantity(ctx, lineID, qty); err != nil {
			return storeErr("update line", err)
		}
		line, err := r.lines.Get(ctx, lineID)
		if err != nil {
			return storeErr("load line", err)
		}
		updated = line
		return nil
	}, attribute.String("recipe_line.id", lineID))
	return updated, err
}

func (r *Resolver) RemoveLine(ctx context.Context, lineID string) error {
	return r.inst.Run(ctx, "recipe.line_remove", func(ctx context.Context) error {
		return storeErr("remove line", r.lines.Remove(ctx, lineID))
	}, attribute.String("recipe_line.id", lineID))
}

// ClearRecipe removes every line of a menu item and returns how many went.
func (r *Resolver) ClearRecipe(ctx context.Context, menuItemID string) (int, error) {
	var removed int
	err := r.inst.Run(ctx, "recipe.clear", func(ctx context.Context) error {
		n, err := r.lines.ClearMenuItem(ctx, menuItemID)
		if err != nil {
			return storeErr("clear recipe", err)
		}
		removed = n
		return nil
	}, attribute.String("menu_item.id", menuItemID))
	return removed, err
}

func (r *Resolver) SaveMenuItem(ctx context.Context, item *domrecipe.MenuItem) error {
	return r.inst.Run(ctx, "recipe.menu_item_save", func(ctx context.Context) error {
		if item == nil || strings.TrimSpace(item.ID) == "" || strings.TrimSpace(item.Name) == "" {
			return domrecipe.ErrInvalidMenuItem
		}
		return storeErr("save menu item", r.menu.Save(ctx, item))
	})
}

// PrepSheet expands order lines into what the kitchen has to prepare.
// Unknown menu items and ingredients are printed by id.
func (r *Resolver) PrepSheet(ctx context.Context, lines []domorder.Line) ([]PrepItem, error) {
	itemIDs := make([]string, 0, len(lines))
	for _, l := range lines {
		itemIDs = append(itemIDs, l.MenuItemID)
	}

	items, err := r.menu.GetMany(ctx, itemIDs)
	if err != nil {
		return nil, storeErr("load menu items", err)
	}
	menuByID := make(map[string]*domrecipe.MenuItem, len(items))
	for _, it := range items {
		menuByID[it.ID] = it
	}

	recipes, err := r.RecipesFor(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	var ingredientIDs []string
	for _, rl := range recipes {
		for _, l := range rl {
			ingredientIDs = append(ingredientIDs, l.IngredientID)
		}
	}
	ingByID, err := r.ingredientsByID(ctx, ingredientIDs)
	if err != nil {
		return nil, err
	}

	out := make([]PrepItem, 0, len(lines))
	for _, ol := range lines {
		item := PrepItem{
			MenuItemID:   ol.MenuItemID,
			MenuItemName: ol.MenuItemID,
			Quantity:     ol.Quantity,
		}
		if mi, ok := menuByID[ol.MenuItemID]; ok {
			item.MenuItemName = mi.Name
			item.Category = mi.Category
		}
		for _, rl := range recipes[ol.MenuItemID] {
			pi := PrepIngredient{Name: rl.IngredientID, Quantity: rl.Scaled(ol.Quantity)}
			if ing, ok := ingByID[rl.IngredientID]; ok {
				pi.Name = ing.Name
				pi.Unit = ing.Unit
			}
			item.Ingredients = append(item.Ingredients, pi)
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *Resolver) ingredientsByID(ctx context.Context, ids []string) (map[string]*dominv.Ingredient, error) {
	if len(ids) == 0 {
		return map[string]*dominv.Ingredient{}, nil
	}
	list, err := r.ingredients.GetMany(ctx, ids)
	if err != nil {
		return nil, storeErr("load ingredients", err)
	}
	out := make(map[string]*dominv.Ingredient, len(list))
	for _, ing := range list {
		out[ing.ID] = ing
	}
	return out, nil
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{
		domrecipe.ErrNotFound,
		domrecipe.ErrMenuItemNotFound,
		domrecipe.ErrDuplicateIngredient,
		domrecipe.ErrInvalidQuantity,
		domrecipe.ErrInvalidLine,
		domrecipe.ErrInvalidMenuItem,
		domrecipe.ErrPersistence,
		dominv.ErrNotFound,
		dominv.ErrPersistence,
		context.Canceled,
		context.DeadlineExceeded,
	} {
		if errors.Is(err, known) {
			return fmt.Errorf("recipe: %s: %w", op, err)
		}
	}
	return fmt.Errorf("%w: %s: %w", domrecipe.ErrPersistence, op, err)
}
