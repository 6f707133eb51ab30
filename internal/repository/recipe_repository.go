package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"recipes/internal/model"
)

// RecipeFilter narrows a recipe listing. Ids within one list are OR-ed,
// the two lists are AND-ed when both are set.
type RecipeFilter struct {
	TagIDs        []uint
	IngredientIDs []uint
}

// AssociationSets selects which association sets an update replaces with
// the values carried by the recipe.
type AssociationSets struct {
	Tags        bool
	Ingredients bool
}

// RecipeRepository defines recipe persistence operations.
type RecipeRepository interface {
	Create(ctx context.Context, recipe *model.Recipe) error
	Update(ctx context.Context, recipe *model.Recipe, sets AssociationSets) error
	ListByOwner(ctx context.Context, ownerID uint, filter RecipeFilter) ([]model.Recipe, error)
	FindOwned(ctx context.Context, ownerID, id uint) (*model.Recipe, error)
	Delete(ctx context.Context, ownerID, id uint) error
	SetImage(ctx context.Context, id uint, image string) error
}

type recipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new recipe repository.
func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

// Create inserts the recipe and links its tags and ingredients in one transaction.
// The linked labels must already exist; they are never inserted or modified.
func (r *recipeRepository) Create(ctx context.Context, recipe *model.Recipe) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return err
		}
		if err := addLinks(tx, model.TagKind, recipe.ID, recipe.TagIDs()); err != nil {
			return err
		}
		return addLinks(tx, model.IngredientKind, recipe.ID, recipe.IngredientIDs())
	})
}

// Update writes the scalar fields and replaces the association sets named by sets.
func (r *recipeRepository) Update(ctx context.Context, recipe *model.Recipe, sets AssociationSets) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Recipe{ID: recipe.ID}).Updates(map[string]interface{}{
			"title":        recipe.Title,
			"time_minutes": recipe.TimeMinutes,
			"price":        recipe.Price,
			"link":         recipe.Link,
		}).Error; err != nil {
			return err
		}
		if sets.Tags {
			if err := replaceLinks(tx, model.TagKind, recipe.ID, recipe.TagIDs()); err != nil {
				return err
			}
		}
		if sets.Ingredients {
			if err := replaceLinks(tx, model.IngredientKind, recipe.ID, recipe.IngredientIDs()); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListByOwner returns the owner's recipes ordered by title descending with
// their tags and ingredients loaded.
func (r *recipeRepository) ListByOwner(ctx context.Context, ownerID uint, filter RecipeFilter) ([]model.Recipe, error) {
	db := r.db.WithContext(ctx)
	q := preloadLabels(db).Where("user_id = ?", ownerID)
	// IN (subquery) keeps each recipe once however many labels match
	if len(filter.TagIDs) > 0 {
		q = q.Where("id IN (?)", db.Table(model.TagKind.JoinTable).Select("recipe_id").Where("tag_id IN ?", filter.TagIDs))
	}
	if len(filter.IngredientIDs) > 0 {
		q = q.Where("id IN (?)", db.Table(model.IngredientKind.JoinTable).Select("recipe_id").Where("ingredient_id IN ?", filter.IngredientIDs))
	}

	recipes := []model.Recipe{}
	if err := q.Order("title DESC").Order("id DESC").Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// FindOwned finds a recipe by id that belongs to ownerID.
func (r *recipeRepository) FindOwned(ctx context.Context, ownerID, id uint) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := preloadLabels(r.db.WithContext(ctx)).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

// Delete removes an owned recipe and its association rows.
func (r *recipeRepository) Delete(ctx context.Context, ownerID, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe model.Recipe
		if err := tx.Where("id = ? AND user_id = ?", id, ownerID).First(&recipe).Error; err != nil {
			return err
		}
		for _, kind := range []model.LabelKind{model.TagKind, model.IngredientKind} {
			if err := tx.Exec("DELETE FROM "+kind.JoinTable+" WHERE recipe_id = ?", id).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&recipe).Error
	})
}

// SetImage stores the image path of a recipe.
func (r *recipeRepository) SetImage(ctx context.Context, id uint, image string) error {
	return r.db.WithContext(ctx).Model(&model.Recipe{ID: id}).Update("image", image).Error
}

func preloadLabels(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("ingredients.id") })
}

// addLinks inserts the missing (recipe, label) pairs.
func addLinks(tx *gorm.DB, kind model.LabelKind, recipeID uint, ids []uint) error {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil
	}

	var linked []uint
	if err := tx.Table(kind.JoinTable).
		Where("recipe_id = ? AND "+kind.JoinColumn+" IN ?", recipeID, ids).
		Pluck(kind.JoinColumn, &linked).Error; err != nil {
		return err
	}
	exists := make(map[uint]struct{}, len(linked))
	for _, id := range linked {
		exists[id] = struct{}{}
	}

	rows := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		if _, ok := exists[id]; ok {
			continue
		}
		rows = append(rows, map[string]interface{}{"recipe_id": recipeID, kind.JoinColumn: id})
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Table(kind.JoinTable).Create(rows).Error
}

// replaceLinks makes ids the exact association set of the recipe.
func replaceLinks(tx *gorm.DB, kind model.LabelKind, recipeID uint, ids []uint) error {
	ids = uniqueIDs(ids)
	del := "DELETE FROM " + kind.JoinTable + " WHERE recipe_id = ?"
	args := []interface{}{recipeID}
	if len(ids) > 0 {
		del += " AND " + kind.JoinColumn + " NOT IN ?"
		args = append(args, ids)
	}
	if err := tx.Exec(del, args...).Error; err != nil {
		return err
	}
	return addLinks(tx, kind, recipeID, ids)
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
