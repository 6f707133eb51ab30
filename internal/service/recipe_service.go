package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"

	"recipes/internal/errors"
	"recipes/internal/model"
	"recipes/internal/repository"
)

// RecipeInput carries the writable fields of a recipe. Nil fields are absent
// from the payload; an empty non-nil id list clears the association.
type RecipeInput struct {
	Title         *string
	TimeMinutes   *int
	Price         *decimal.Decimal
	Link          *string
	TagIDs        []uint
	IngredientIDs []uint
}

// RecipeQuery narrows a recipe listing.
type RecipeQuery struct {
	TagIDs        []uint
	IngredientIDs []uint
}

// ImageStore validates and persists uploaded images.
type ImageStore interface {
	Save(filename string, content io.Reader) (string, error)
	Delete(path string) error
}

// RecipeService is the owned recipe collection.
type RecipeService interface {
	List(ctx context.Context, user *model.User, q RecipeQuery) ([]model.Recipe, error)
	Create(ctx context.Context, user *model.User, in RecipeInput) (*model.Recipe, error)
	Retrieve(ctx context.Context, user *model.User, id uint) (*model.Recipe, error)
	Update(ctx context.Context, user *model.User, id uint, in RecipeInput, mode UpdateMode) (*model.Recipe, error)
	Delete(ctx context.Context, user *model.User, id uint) error
	UploadImage(ctx context.Context, user *model.User, id uint, filename string, content io.Reader) (*model.Recipe, error)
}

// RecipeOption configures a RecipeService.
type RecipeOption func(*recipeService)

// WithCrossTenantLabels lets recipes link labels owned by other users.
func WithCrossTenantLabels(allow bool) RecipeOption {
	return func(s *recipeService) { s.crossTenant = allow }
}

// WithLogger sets the logger used for best-effort cleanup failures.
func WithLogger(log *slog.Logger) RecipeOption {
	return func(s *recipeService) { s.log = log }
}

type recipeService struct {
	recipes     repository.RecipeRepository
	tags        repository.LabelRepository[model.Tag]
	ingredients repository.LabelRepository[model.Ingredient]
	images      ImageStore
	crossTenant bool
	log         *slog.Logger
}

// NewRecipeService creates a new recipe service.
func NewRecipeService(
	recipes repository.RecipeRepository,
	tags repository.LabelRepository[model.Tag],
	ingredients repository.LabelRepository[model.Ingredient],
	images ImageStore,
	opts ...RecipeOption,
) RecipeService {
	s := &recipeService{
		recipes:     recipes,
		tags:        tags,
		ingredients: ingredients,
		images:      images,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *recipeService) List(ctx context.Context, user *model.User, q RecipeQuery) ([]model.Recipe, error) {
	recipes, err := s.recipes.ListByOwner(ctx, user.ID, repository.RecipeFilter{
		TagIDs:        q.TagIDs,
		IngredientIDs: q.IngredientIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

// Create stores a recipe owned by user and links the referenced labels.
func (s *recipeService) Create(ctx context.Context, user *model.User, in RecipeInput) (*model.Recipe, error) {
	if err := requireRecipeFields(in); err != nil {
		return nil, err
	}
	tags, ingredients, err := s.resolveLabels(ctx, user, in, AssociationsOf(in, FullUpdate))
	if err != nil {
		return nil, err
	}

	recipe := &model.Recipe{
		UserID:      user.ID,
		Title:       *in.Title,
		TimeMinutes: *in.TimeMinutes,
		Price:       *in.Price,
		Tags:        tags,
		Ingredients: ingredients,
	}
	if in.Link != nil {
		recipe.Link = *in.Link
	}
	if err := s.recipes.Create(ctx, recipe); err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}
	return s.Retrieve(ctx, user, recipe.ID)
}

func (s *recipeService) Retrieve(ctx context.Context, user *model.User, id uint) (*model.Recipe, error) {
	recipe, err := s.recipes.FindOwned(ctx, user.ID, id)
	if err != nil {
		return nil, notFound(err, "retrieve recipe %d", id)
	}
	return recipe, nil
}

// Update applies in to the recipe. A partial update leaves absent fields and
// absent association lists untouched; a full update requires title,
// time_minutes and price and clears absent link and association lists.
func (s *recipeService) Update(ctx context.Context, user *model.User, id uint, in RecipeInput, mode UpdateMode) (*model.Recipe, error) {
	recipe, err := s.Retrieve(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if mode == FullUpdate {
		if err := requireRecipeFields(in); err != nil {
			return nil, err
		}
	}

	sets := AssociationsOf(in, mode)
	tags, ingredients, err := s.resolveLabels(ctx, user, in, sets)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		recipe.Title = *in.Title
	}
	if in.TimeMinutes != nil {
		recipe.TimeMinutes = *in.TimeMinutes
	}
	if in.Price != nil {
		recipe.Price = *in.Price
	}
	switch {
	case in.Link != nil:
		recipe.Link = *in.Link
	case mode == FullUpdate:
		recipe.Link = ""
	}
	if sets.Tags {
		recipe.Tags = tags
	}
	if sets.Ingredients {
		recipe.Ingredients = ingredients
	}

	if err := s.recipes.Update(ctx, recipe, sets); err != nil {
		return nil, fmt.Errorf("update recipe %d: %w", id, err)
	}
	return s.Retrieve(ctx, user, id)
}

func (s *recipeService) Delete(ctx context.Context, user *model.User, id uint) error {
	recipe, err := s.Retrieve(ctx, user, id)
	if err != nil {
		return err
	}
	if err := s.recipes.Delete(ctx, user.ID, id); err != nil {
		return notFound(err, "delete recipe %d", id)
	}
	s.removeImage(recipe.Image)
	return nil
}

// UploadImage stores content as the recipe image, replacing any previous one.
func (s *recipeService) UploadImage(ctx context.Context, user *model.User, id uint, filename string, content io.Reader) (*model.Recipe, error) {
	recipe, err := s.Retrieve(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, errors.NewValidationError("image", "No file was submitted.")
	}

	path, err := s.images.Save(filename, content)
	if err != nil {
		return nil, err
	}
	if err := s.recipes.SetImage(ctx, recipe.ID, path); err != nil {
		s.removeImage(path)
		return nil, fmt.Errorf("set image of recipe %d: %w", id, err)
	}
	if recipe.Image != path {
		s.removeImage(recipe.Image)
	}
	recipe.Image = path
	return recipe, nil
}

func (s *recipeService) removeImage(path string) {
	if path == "" {
		return
	}
	if err := s.images.Delete(path); err != nil {
		s.log.Warn("failed to remove recipe image", "path", path, "error", err)
	}
}

// AssociationsOf reports which association sets an input replaces.
func AssociationsOf(in RecipeInput, mode UpdateMode) repository.AssociationSets {
	if mode == FullUpdate {
		return repository.AssociationSets{Tags: true, Ingredients: true}
	}
	return repository.AssociationSets{
		Tags:        in.TagIDs != nil,
		Ingredients: in.IngredientIDs != nil,
	}
}

func (s *recipeService) resolveLabels(ctx context.Context, user *model.User, in RecipeInput, sets repository.AssociationSets) ([]model.Tag, []model.Ingredient, error) {
	verr := &errors.ValidationError{}
	var (
		tags        []model.Tag
		ingredients []model.Ingredient
		err         error
	)
	if sets.Tags {
		if tags, err = resolve(ctx, s.tags, user.ID, in.TagIDs, s.crossTenant, "tags", verr); err != nil {
			return nil, nil, err
		}
	}
	if sets.Ingredients {
		if ingredients, err = resolve(ctx, s.ingredients, user.ID, in.IngredientIDs, s.crossTenant, "ingredients", verr); err != nil {
			return nil, nil, err
		}
	}
	if !verr.Empty() {
		return nil, nil, verr
	}
	return tags, ingredients, nil
}

// resolve loads the labels behind ids. Ids that do not exist, or that belong
// to another user unless crossTenant is set, are reported on verr under field.
func resolve[T model.Label](ctx context.Context, repo repository.LabelRepository[T], owner uint, ids []uint, crossTenant bool, field string, verr *errors.ValidationError) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}
	var (
		found []T
		err   error
	)
	if crossTenant {
		found, err = repo.FindByIDs(ctx, ids)
	} else {
		found, err = repo.FindOwnedByIDs(ctx, owner, ids)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", field, err)
	}

	known := make(map[uint]bool, len(found))
	for _, l := range found {
		known[l.GetID()] = true
	}
	reported := make(map[uint]bool)
	for _, id := range ids {
		if !known[id] && !reported[id] {
			reported[id] = true
			verr.Add(field, fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
		}
	}
	return found, nil
}

func requireRecipeFields(in RecipeInput) error {
	verr := &errors.ValidationError{}
	if in.Title == nil {
		verr.Add("title", "This field is required.")
	}
	if in.TimeMinutes == nil {
		verr.Add("time_minutes", "This field is required.")
	}
	if in.Price == nil {
		verr.Add("price", "This field is required.")
	}
	if !verr.Empty() {
		return verr
	}
	return nil
}
