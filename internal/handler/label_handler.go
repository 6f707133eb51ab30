package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"recipes/internal/errors"
	"recipes/internal/model"
	"recipes/internal/serializer"
	"recipes/internal/service"
)

// labelPatch is the partial update payload of a label.
type labelPatch struct {
	Name *string `json:"name" validate:"omitempty,max=255"`
}

// LabelHandler serves the owned tag or ingredient collection.
type LabelHandler[T model.Label] struct {
	svc service.LabelService[T]
}

// NewLabelHandler creates a label handler.
func NewLabelHandler[T model.Label](svc service.LabelService[T]) *LabelHandler[T] {
	return &LabelHandler[T]{svc: svc}
}

// List godoc
// @Summary List the caller's tags or ingredients
// @Description Ordered by name descending. assigned_only=1 keeps only labels linked to one of the caller's recipes.
// @Tags recipe
// @Produce json
// @Security TokenAuth
// @Param assigned_only query int false "Only labels assigned to a recipe" Enums(0, 1)
// @Success 200 {array} serializer.Label
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /recipe/tags [get]
// @Router /recipe/ingredients [get]
func (h *LabelHandler[T]) List(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}
	assigned, err := service.ParseFlag("assigned_only", c.QueryParam("assigned_only"))
	if err != nil {
		return fail(err)
	}

	labels, err := h.svc.List(c.Request().Context(), user, service.LabelQuery{AssignedOnly: assigned})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, serializer.Labels(labels))
}

// Create godoc
// @Summary Create a tag or ingredient
// @Tags recipe
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param label body serializer.LabelRequest true "Label"
// @Success 201 {object} serializer.Label
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /recipe/tags [post]
// @Router /recipe/ingredients [post]
func (h *LabelHandler[T]) Create(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}
	var req serializer.LabelRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	req.Normalize()
	if err := validate(c, &req); err != nil {
		return err
	}

	label, err := h.svc.Create(c.Request().Context(), user, req.Name)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, serializer.LabelOf(*label))
}

// Update godoc
// @Summary Rename a tag or ingredient
// @Description PUT requires name; PATCH without name leaves the label unchanged.
// @Tags recipe
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param id path int true "Label ID"
// @Param label body serializer.LabelRequest true "Label"
// @Success 200 {object} serializer.Label
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipe/tags/{id} [put]
// @Router /recipe/tags/{id} [patch]
// @Router /recipe/ingredients/{id} [put]
// @Router /recipe/ingredients/{id} [patch]
func (h *LabelHandler[T]) Update(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req labelPatch
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := validate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	var label *T
	switch {
	case req.Name != nil:
		label, err = h.svc.Rename(ctx, user, id, *req.Name)
	case updateMode(c) == service.FullUpdate:
		err = errors.NewValidationError("name", "This field is required.")
	default:
		label, err = h.svc.Retrieve(ctx, user, id)
	}
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, serializer.LabelOf(*label))
}

// Delete godoc
// @Summary Delete a tag or ingredient
// @Description Recipes that referenced the label lose the link.
// @Tags recipe
// @Security TokenAuth
// @Param id path int true "Label ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipe/tags/{id} [delete]
// @Router /recipe/ingredients/{id} [delete]
func (h *LabelHandler[T]) Delete(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), user, id); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}
