package gormstore

import (
	"context"
	"errors"
	"time"

	domain "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/inventory"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IngredientRepository locks the rows it writes with SELECT ... FOR UPDATE
// so an adjustment and a concurrent draw serialize on the same ingredient.
type IngredientRepository struct {
	db *gorm.DB
}

func NewIngredientRepository(db *gorm.DB) *IngredientRepository {
	return &IngredientRepository{db: db}
}

func (r *IngredientRepository) Create(ctx context.Context, ing *domain.Ingredient) error {
	if ing == nil || ing.ID == "" {
		return domain.ErrInvalidIngredient
	}
	err := r.db.WithContext(ctx).Create(toIngredientRow(ing)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrConflict
	}
	return persistErr(err)
}

func (r *IngredientRepository) Get(ctx context.Context, id string) (*domain.Ingredient, error) {
	var row ingredientRow
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, persistErr(err)
	}
	return row.domain(), nil
}

func (r *IngredientRepository) GetMany(ctx context.Context, ids []string) ([]*domain.Ingredient, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []ingredientRow
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, persistErr(err)
	}
	out := make([]*domain.Ingredient, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.domain())
	}
	return out, nil
}

func (r *IngredientRepository) List(ctx context.Context) ([]*domain.Ingredient, error) {
	var rows []ingredientRow
	if err := r.db.WithContext(ctx).Order("name, id").Find(&rows).Error; err != nil {
		return nil, persistErr(err)
	}
	out := make([]*domain.Ingredient, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.domain())
	}
	return out, nil
}

func (r *IngredientRepository) UpdateDetails(ctx context.Context, ing *domain.Ingredient) error {
	if ing == nil || ing.ID == "" {
		return domain.ErrInvalidIngredient
	}
	res := r.db.WithContext(ctx).Model(&ingredientRow{}).Where("id = ?", ing.ID).Updates(map[string]any{
		"name":          ing.Name,
		"unit":          ing.Unit,
		"minimum_stock": ing.MinimumStock,
		"cost_per_unit": ing.CostPerUnit,
		"supplier_id":   ing.SupplierID,
		"updated_at":    ing.UpdatedAt,
	})
	if res.Error != nil {
		return persistErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *IngredientRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&ingredientRow{}, "id = ?", id)
	if res.Error != nil {
		return persistErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Adjust writes the new level and its journal entry in one transaction.
func (r *IngredientRepository) Adjust(ctx context.Context, id string, amount decimal.Decimal, mode domain.Mode, journal domain.Journal) (domain.Adjustment, error) {
	var adj domain.Adjustment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row ingredientRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}

		next, err := domain.Apply(row.CurrentStock, amount, mode)
		if err != nil {
			return err
		}
		if err := writeStock(tx, id, next); err != nil {
			return err
		}
		adj = domain.Adjustment{IngredientID: id, Previous: row.CurrentStock, New: next, Minimum: row.MinimumStock}
		return writeJournal(tx, journal, adj)
	})
	if err != nil {
		return domain.Adjustment{}, passOrPersist(err)
	}
	return adj, nil
}

// Consume locks exactly the demanded rows in id order, which keeps two
// overlapping draws from deadlocking, and writes them with their journal
// entries in one transaction.
func (r *IngredientRepository) Consume(ctx context.Context, demand domain.Demand, journal domain.Journal) ([]domain.Adjustment, []string, error) {
	ids := demand.IDs()
	if len(ids) == 0 {
		return nil, nil, nil
	}

	var (
		applied []domain.Adjustment
		missing []string
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		applied, missing = nil, nil

		var rows []ingredientRow
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", ids).
			Order("id").
			Find(&rows).Error; err != nil {
			return err
		}
		byID := make(map[string]ingredientRow, len(rows))
		for _, row := range rows {
			byID[row.ID] = row
		}

		for _, id := range ids {
			row, ok := byID[id]
			if !ok {
				missing = append(missing, id)
				continue
			}
			next, err := domain.Apply(row.CurrentStock, demand[id], domain.ModeDeduct)
			if err != nil {
				return err
			}
			if err := writeStock(tx, id, next); err != nil {
				return err
			}
			applied = append(applied, domain.Adjustment{
				IngredientID: id,
				Previous:     row.CurrentStock,
				New:          next,
				Minimum:      row.MinimumStock,
			})
		}
		return writeJournal(tx, journal, applied...)
	})
	if err != nil {
		return nil, nil, passOrPersist(err)
	}
	return applied, missing, nil
}

func writeStock(tx *gorm.DB, id string, level decimal.Decimal) error {
	return tx.Model(&ingredientRow{}).Where("id = ?", id).Updates(map[string]any{
		"current_stock": level,
		"updated_at":    time.Now().UTC(),
	}).Error
}

func writeJournal(tx *gorm.DB, journal domain.Journal, adjs ...domain.Adjustment) error {
	if journal == nil || len(adjs) == 0 {
		return nil
	}
	entries := make([]domain.Transaction, 0, len(adjs))
	for _, adj := range adjs {
		entries = append(entries, journal(adj))
	}
	return insertTransactions(tx, entries)
}

func persistErr(err error) error {
	return persistence(domain.ErrPersistence, err)
}

func passOrPersist(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidMode):
		return err
	default:
		return persistErr(err)
	}
}
