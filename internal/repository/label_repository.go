package repository

import (
	"context"

	"gorm.io/gorm"

	"recipes/internal/model"
)

// LabelFilter narrows a label listing.
type LabelFilter struct {
	// AssignedOnly keeps labels linked to at least one of the owner's recipes.
	AssignedOnly bool
}

// LabelRepository defines persistence operations shared by tags and ingredients.
type LabelRepository[T model.Label] interface {
	Create(ctx context.Context, label *T) error
	Update(ctx context.Context, label *T) error
	ListByOwner(ctx context.Context, ownerID uint, filter LabelFilter) ([]T, error)
	FindOwned(ctx context.Context, ownerID, id uint) (*T, error)
	FindOwnedByIDs(ctx context.Context, ownerID uint, ids []uint) ([]T, error)
	FindByIDs(ctx context.Context, ids []uint) ([]T, error)
	Delete(ctx context.Context, ownerID, id uint) error
}

type labelRepository[T model.Label] struct {
	db   *gorm.DB
	kind model.LabelKind
}

// NewLabelRepository creates a repository for the label type T.
func NewLabelRepository[T model.Label](db *gorm.DB) LabelRepository[T] {
	return &labelRepository[T]{db: db, kind: model.KindOf[T]()}
}

// NewTagRepository creates a tag repository.
func NewTagRepository(db *gorm.DB) LabelRepository[model.Tag] {
	return NewLabelRepository[model.Tag](db)
}

// NewIngredientRepository creates an ingredient repository.
func NewIngredientRepository(db *gorm.DB) LabelRepository[model.Ingredient] {
	return NewLabelRepository[model.Ingredient](db)
}

func (r *labelRepository[T]) Create(ctx context.Context, label *T) error {
	return r.db.WithContext(ctx).Create(label).Error
}

func (r *labelRepository[T]) Update(ctx context.Context, label *T) error {
	return r.db.WithContext(ctx).Save(label).Error
}

// ListByOwner returns the owner's labels ordered by name descending.
func (r *labelRepository[T]) ListByOwner(ctx context.Context, ownerID uint, filter LabelFilter) ([]T, error) {
	db := r.db.WithContext(ctx)
	q := db.Where("user_id = ?", ownerID)
	if filter.AssignedOnly {
		// semi-join: a label linked to several recipes is still one row
		assigned := db.Table(r.kind.JoinTable).
			Select(r.kind.JoinTable+"."+r.kind.JoinColumn).
			Joins("JOIN recipes ON recipes.id = "+r.kind.JoinTable+".recipe_id").
			Where("recipes.user_id = ?", ownerID)
		q = q.Where("id IN (?)", assigned)
	}

	labels := []T{}
	if err := q.Order("name DESC").Order("id DESC").Find(&labels).Error; err != nil {
		return nil, err
	}
	return labels, nil
}

func (r *labelRepository[T]) FindOwned(ctx context.Context, ownerID, id uint) (*T, error) {
	var label T
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).First(&label).Error; err != nil {
		return nil, err
	}
	return &label, nil
}

func (r *labelRepository[T]) FindOwnedByIDs(ctx context.Context, ownerID uint, ids []uint) ([]T, error) {
	labels := []T{}
	if len(ids) == 0 {
		return labels, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ? AND user_id = ?", ids, ownerID).Order("id").Find(&labels).Error; err != nil {
		return nil, err
	}
	return labels, nil
}

func (r *labelRepository[T]) FindByIDs(ctx context.Context, ids []uint) ([]T, error) {
	labels := []T{}
	if len(ids) == 0 {
		return labels, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&labels).Error; err != nil {
		return nil, err
	}
	return labels, nil
}

// Delete removes an owned label and its recipe links.
func (r *labelRepository[T]) Delete(ctx context.Context, ownerID, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var label T
		if err := tx.Where("id = ? AND user_id = ?", id, ownerID).First(&label).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM "+r.kind.JoinTable+" WHERE "+r.kind.JoinColumn+" = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&label).Error
	})
}
