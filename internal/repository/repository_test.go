package repository_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"recipes/internal/db/dbtest"
	"recipes/internal/model"
	"recipes/internal/repository"
)

type fixture struct {
	db          *gorm.DB
	users       repository.UserRepository
	tags        repository.LabelRepository[model.Tag]
	ingredients repository.LabelRepository[model.Ingredient]
	recipes     repository.RecipeRepository
}

func newFixture(t *testing.T) *fixture {
	gormDB := dbtest.New(t)
	return &fixture{
		db:          gormDB,
		users:       repository.NewUserRepository(gormDB),
		tags:        repository.NewTagRepository(gormDB),
		ingredients: repository.NewIngredientRepository(gormDB),
		recipes:     repository.NewRecipeRepository(gormDB),
	}
}

func (f *fixture) user(t *testing.T, email string) *model.User {
	u := &model.User{Email: email, PasswordHash: "x", IsActive: true}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) tag(t *testing.T, owner *model.User, name string) model.Tag {
	tag := model.NewLabel[model.Tag](owner.ID, name)
	require.NoError(t, f.tags.Create(context.Background(), &tag))
	return tag
}

func (f *fixture) ingredient(t *testing.T, owner *model.User, name string) model.Ingredient {
	ing := model.NewLabel[model.Ingredient](owner.ID, name)
	require.NoError(t, f.ingredients.Create(context.Background(), &ing))
	return ing
}

func (f *fixture) recipe(t *testing.T, owner *model.User, title string, tags []model.Tag, ingredients []model.Ingredient) *model.Recipe {
	r := &model.Recipe{
		UserID:      owner.ID,
		Title:       title,
		TimeMinutes: 10,
		Price:       decimal.RequireFromString("5.00"),
		Tags:        tags,
		Ingredients: ingredients,
	}
	require.NoError(t, f.recipes.Create(context.Background(), r))
	return r
}

func titles(recipes []model.Recipe) []string {
	out := make([]string, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, r.Title)
	}
	return out
}

func TestUserRepository_EmailIsNormalized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.user(t, "  Test@X.com ")
	assert.Equal(t, "test@x.com", u.Email)

	found, err := f.users.FindByEmail(ctx, "TEST@x.COM")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	err = f.users.Create(ctx, &model.User{Email: "test@X.com", PasswordHash: "y"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.user(t, "a@x.com")
	other := f.user(t, "b@x.com")
	vegan := f.tag(t, owner, "Vegan")
	eggs := f.ingredient(t, owner, "Eggs")
	omelette := f.recipe(t, owner, "Omelette", []model.Tag{vegan}, []model.Ingredient{eggs})
	f.recipe(t, owner, "Plain", nil, nil)
	kept := f.recipe(t, other, "Toast", nil, nil)
	require.NoError(t, f.recipes.SetImage(ctx, omelette.ID, "uploads/recipe/omelette.jpg"))
	require.NoError(t, f.recipes.SetImage(ctx, kept.ID, "uploads/recipe/toast.jpg"))

	images, err := f.users.Delete(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"uploads/recipe/omelette.jpg"}, images)

	var count int64
	require.NoError(t, f.db.Model(&model.Recipe{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	require.NoError(t, f.db.Model(&model.Tag{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, f.db.Model(&model.Ingredient{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, f.db.Table("recipe_tags").Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, f.db.Table("recipe_ingredients").Count(&count).Error)
	assert.Zero(t, count)

	_, err = f.recipes.FindOwned(ctx, other.ID, kept.ID)
	assert.NoError(t, err)

	_, err = f.users.Delete(ctx, owner.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestLabelRepository_ListByOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.user(t, "a@x.com")
	other := f.user(t, "b@x.com")
	f.tag(t, owner, "Dessert")
	f.tag(t, owner, "Vegan")
	f.tag(t, owner, "Breakfast")
	f.tag(t, other, "Zesty")

	tags, err := f.tags.ListByOwner(ctx, owner.ID, repository.LabelFilter{})
	require.NoError(t, err)

	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
		assert.Equal(t, owner.ID, tag.UserID)
	}
	assert.Equal(t, []string{"Vegan", "Dessert", "Breakfast"}, names)
}

func TestLabelRepository_AssignedOnlyIsDistinct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.user(t, "a@x.com")
	other := f.user(t, "b@x.com")
	eggs := f.ingredient(t, owner, "Eggs")
	f.ingredient(t, owner, "Cheese")
	f.recipe(t, owner, "Omelette", nil, []model.Ingredient{eggs})
	f.recipe(t, owner, "Frittata", nil, []model.Ingredient{eggs})

	got, err := f.ingredients.ListByOwner(ctx, owner.ID, repository.LabelFilter{AssignedOnly: true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, eggs.ID, got[0].ID)

	// a link made from another user's recipe does not count as assigned
	milk := f.ingredient(t, owner, "Milk")
	f.recipe(t, other, "Latte", nil, []model.Ingredient{milk})
	got, err = f.ingredients.ListByOwner(ctx, owner.ID, repository.LabelFilter{AssignedOnly: true})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestLabelRepository_FindOwned(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.user(t, "a@x.com")
	other := f.user(t, "b@x.com")
	tag := f.tag(t, owner, "Vegan")

	found, err := f.tags.FindOwned(ctx, owner.ID, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, "Vegan", found.Name)

	_, err = f.tags.FindOwned(ctx, other.ID, tag.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	mine, err := f.tags.FindOwnedByIDs(ctx, other.ID, []uint{tag.ID})
	require.NoError(t, err)
	assert.Empty(t, mine)

	all, err := f.tags.FindByIDs(ctx, []uint{tag.ID, 999})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestLabelRepository_DeleteUnlinks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.user(t, "a@x.com")
	other := f.user(t, "b@x.com")
	tag := f.tag(t, owner, "Vegan")
	recipe := f.recipe(t, owner, "Salad", []model.Tag{tag}, nil)

	assert.ErrorIs(t, f.tags.Delete(ctx, other.ID, tag.ID), gorm.ErrRecordNotFound)
	require.NoError(t, f.tags.Delete(ctx, owner.ID, tag.ID))

	got, err := f.recipes.FindOwned(ctx, owner.ID, recipe.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
}

func TestRecipeRepository_ListByOwnerScopesAndOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.user(t, "a@x.com")
	other := f.user(t, "b@x.com")
	f.recipe(t, owner, "Apple pie", nil, nil)
	f.recipe(t, owner, "Omelette", nil, nil)
	f.recipe(t, owner, "Curry", nil, nil)
	f.recipe(t, other, "Zucchini bread", nil, nil)

	recipes, err := f.recipes.ListByOwner(ctx, owner.ID, repository.RecipeFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Omelette", "Curry", "Apple pie"}, titles(recipes))
}

func TestRecipeRepository_FilterUnionWithoutDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.user(t, "a@x.com")
	vegan := f.tag(t, owner, "Vegan")
	vegetarian := f.tag(t, owner, "Vegetarian")
	tofu := f.ingredient(t, owner, "Tofu")
	f.recipe(t, owner, "Thai vegetable curry", []model.Tag{vegan}, []model.Ingredient{tofu})
	f.recipe(t, owner, "Aubergine with tahini", []model.Tag{vegetarian}, nil)
	f.recipe(t, owner, "Buddha bowl", []model.Tag{vegan, vegetarian}, []model.Ingredient{tofu})
	f.recipe(t, owner, "Fish and chips", nil, nil)

	byTags, err := f.recipes.ListByOwner(ctx, owner.ID, repository.RecipeFilter{TagIDs: []uint{vegan.ID, vegetarian.ID}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Thai vegetable curry", "Buddha bowl", "Aubergine with tahini"}, titles(byTags))

	both, err := f.recipes.ListByOwner(ctx, owner.ID, repository.RecipeFilter{
		TagIDs:        []uint{vegan.ID, vegetarian.ID},
		IngredientIDs: []uint{tofu.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Thai vegetable curry", "Buddha bowl"}, titles(both))
}

func TestRecipeRepository_UpdateReplacesSelectedSets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.user(t, "a@x.com")
	old := f.tag(t, owner, "Old")
	fresh := f.tag(t, owner, "Fresh")
	eggs := f.ingredient(t, owner, "Eggs")
	recipe := f.recipe(t, owner, "Omelette", []model.Tag{old}, []model.Ingredient{eggs})

	recipe.Title = "Chicken"
	recipe.Tags = []model.Tag{fresh}
	recipe.Ingredients = nil
	require.NoError(t, f.recipes.Update(ctx, recipe, repository.AssociationSets{Tags: true}))

	got, err := f.recipes.FindOwned(ctx, owner.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chicken", got.Title)
	assert.Equal(t, []uint{fresh.ID}, got.TagIDs())
	assert.Equal(t, []uint{eggs.ID}, got.IngredientIDs(), "ingredients untouched")

	recipe.Tags = nil
	require.NoError(t, f.recipes.Update(ctx, recipe, repository.AssociationSets{Tags: true, Ingredients: true}))
	got, err = f.recipes.FindOwned(ctx, owner.ID, recipe.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
	assert.Empty(t, got.Ingredients)
}

func TestRecipeRepository_LinksAreIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.user(t, "a@x.com")
	vegan := f.tag(t, owner, "Vegan")
	quick := f.tag(t, owner, "Quick")
	recipe := f.recipe(t, owner, "Salad", []model.Tag{vegan}, nil)

	recipe.Tags = []model.Tag{vegan, quick, quick}
	require.NoError(t, f.recipes.Update(ctx, recipe, repository.AssociationSets{Tags: true}))
	require.NoError(t, f.recipes.Update(ctx, recipe, repository.AssociationSets{Tags: true}))

	var links int64
	require.NoError(t, f.db.Table("recipe_tags").Where("recipe_id = ?", recipe.ID).Count(&links).Error)
	assert.EqualValues(t, 2, links)

	recipe.Tags = []model.Tag{vegan}
	require.NoError(t, f.recipes.Update(ctx, recipe, repository.AssociationSets{Tags: true}))
	require.NoError(t, f.recipes.Update(ctx, recipe, repository.AssociationSets{Tags: true}))

	got, err := f.recipes.FindOwned(ctx, owner.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{vegan.ID}, got.TagIDs())
}

func TestRecipeRepository_DeleteAndImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.user(t, "a@x.com")
	other := f.user(t, "b@x.com")
	tag := f.tag(t, owner, "Vegan")
	recipe := f.recipe(t, owner, "Salad", []model.Tag{tag}, nil)

	require.NoError(t, f.recipes.SetImage(ctx, recipe.ID, "uploads/recipe/a.jpg"))
	got, err := f.recipes.FindOwned(ctx, owner.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "uploads/recipe/a.jpg", got.Image)

	assert.ErrorIs(t, f.recipes.Delete(ctx, other.ID, recipe.ID), gorm.ErrRecordNotFound)
	require.NoError(t, f.recipes.Delete(ctx, owner.ID, recipe.ID))

	_, err = f.recipes.FindOwned(ctx, owner.ID, recipe.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var links int64
	require.NoError(t, f.db.Table("recipe_tags").Count(&links).Error)
	assert.Zero(t, links)
}
