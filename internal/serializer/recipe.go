package serializer

import (
	stderrors "errors"

	"github.com/shopspring/decimal"

	"recipes/internal/errors"
	"recipes/internal/media"
	"recipes/internal/model"
	"recipes/internal/service"
)

var maxPrice = decimal.New(1000, 0)

// RecipeRequest is the write payload of a recipe. Pointer and slice fields
// stay nil when absent so partial updates can tell them apart from zero values.
type RecipeRequest struct {
	Title       *string          `json:"title" validate:"omitempty,max=255"`
	TimeMinutes *int             `json:"time_minutes" validate:"omitempty,min=0"`
	Price       *decimal.Decimal `json:"price"`
	Link        *string          `json:"link" validate:"omitempty,max=255"`
	Tags        []uint           `json:"tags"`
	Ingredients []uint           `json:"ingredients"`
}

// Input validates the payload for mode and converts it to a service input.
// Creation is validated like a full update.
func (r *RecipeRequest) Input(mode service.UpdateMode) (service.RecipeInput, error) {
	trimPtr(r.Title)
	trimPtr(r.Link)

	verr := &errors.ValidationError{}
	if err := Validate(r); err != nil && !stderrors.As(err, &verr) {
		return service.RecipeInput{}, err
	}

	if mode == service.FullUpdate {
		if r.Title == nil {
			verr.Add("title", msgRequired)
		}
		if r.TimeMinutes == nil {
			verr.Add("time_minutes", msgRequired)
		}
		if r.Price == nil {
			verr.Add("price", msgRequired)
		}
	}
	if r.Title != nil && *r.Title == "" {
		verr.Add("title", msgBlank)
	}
	if r.Price != nil {
		switch {
		case r.Price.IsNegative():
			verr.Add("price", "Ensure this value is greater than or equal to 0.")
		case !r.Price.Equal(r.Price.Truncate(2)):
			verr.Add("price", "Ensure that there are no more than 2 decimal places.")
		case r.Price.GreaterThanOrEqual(maxPrice):
			verr.Add("price", "Ensure that there are no more than 5 digits in total.")
		}
	}
	if !verr.Empty() {
		return service.RecipeInput{}, verr
	}

	return service.RecipeInput{
		Title:         r.Title,
		TimeMinutes:   r.TimeMinutes,
		Price:         r.Price,
		Link:          r.Link,
		TagIDs:        r.Tags,
		IngredientIDs: r.Ingredients,
	}, nil
}

// Operation names the recipe operation a representation is produced for.
type Operation string

const (
	OpList        Operation = "list"
	OpCreate      Operation = "create"
	OpRetrieve    Operation = "retrieve"
	OpUpdate      Operation = "update"
	OpUploadImage Operation = "upload-image"
)

// RecipeSummary lists associated labels by id.
type RecipeSummary struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	TimeMinutes int    `json:"time_minutes"`
	Price       string `json:"price"`
	Link        string `json:"link"`
	Ingredients []uint `json:"ingredients"`
	Tags        []uint `json:"tags"`
}

// RecipeDetail nests the associated labels.
type RecipeDetail struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	TimeMinutes int     `json:"time_minutes"`
	Price       string  `json:"price"`
	Link        string  `json:"link"`
	Ingredients []Label `json:"ingredients"`
	Tags        []Label `json:"tags"`
}

// RecipeImage is the image upload representation.
type RecipeImage struct {
	ID    uint    `json:"id"`
	Image *string `json:"image"`
}

// RecipeView renders a recipe.
type RecipeView func(*model.Recipe) interface{}

// RecipeSerializer holds the operation to representation table.
type RecipeSerializer struct {
	mediaURL string
	views    map[Operation]RecipeView
}

// NewRecipeSerializer creates a serializer rendering image paths under mediaURL.
func NewRecipeSerializer(mediaURL string) *RecipeSerializer {
	s := &RecipeSerializer{mediaURL: mediaURL}
	s.views = map[Operation]RecipeView{
		OpList:        summary,
		OpCreate:      summary,
		OpUpdate:      summary,
		OpRetrieve:    detail,
		OpUploadImage: s.image,
	}
	return s
}

// View returns the representation used for op. Unknown operations get the summary.
func (s *RecipeSerializer) View(op Operation) RecipeView {
	if v, ok := s.views[op]; ok {
		return v
	}
	return summary
}

// Many renders a list of recipes for op.
func (s *RecipeSerializer) Many(op Operation, recipes []model.Recipe) []interface{} {
	view := s.View(op)
	out := make([]interface{}, 0, len(recipes))
	for i := range recipes {
		out = append(out, view(&recipes[i]))
	}
	return out
}

// ImageURL returns the public URL of a stored image path, or nil when unset.
func (s *RecipeSerializer) ImageURL(path string) *string {
	if path == "" {
		return nil
	}
	url := media.URL(s.mediaURL, path)
	return &url
}

func summary(r *model.Recipe) interface{} {
	return RecipeSummary{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price.StringFixed(2),
		Link:        r.Link,
		Ingredients: r.IngredientIDs(),
		Tags:        r.TagIDs(),
	}
}

func detail(r *model.Recipe) interface{} {
	return RecipeDetail{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price.StringFixed(2),
		Link:        r.Link,
		Ingredients: Labels(r.Ingredients),
		Tags:        Labels(r.Tags),
	}
}

func (s *RecipeSerializer) image(r *model.Recipe) interface{} {
	return RecipeImage{ID: r.ID, Image: s.ImageURL(r.Image)}
}
