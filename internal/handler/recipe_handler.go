package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"recipes/internal/errors"
	"recipes/internal/serializer"
	"recipes/internal/service"
)

// ImageField is the multipart field carrying an uploaded recipe image.
const ImageField = "image"

// RecipeHandler serves the owned recipe collection.
type RecipeHandler struct {
	svc        service.RecipeService
	serializer *serializer.RecipeSerializer
}

// NewRecipeHandler creates a recipe handler.
func NewRecipeHandler(svc service.RecipeService, s *serializer.RecipeSerializer) *RecipeHandler {
	return &RecipeHandler{svc: svc, serializer: s}
}

// List godoc
// @Summary List the caller's recipes
// @Description Ordered by title descending. Ids within one filter match any; both filters must match.
// @Tags recipe
// @Produce json
// @Security TokenAuth
// @Param tag query string false "Comma separated tag ids (alias: tags)"
// @Param ingredients query string false "Comma separated ingredient ids"
// @Success 200 {array} serializer.RecipeSummary
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /recipe/recipes [get]
func (h *RecipeHandler) List(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}
	tagParam := "tag"
	if c.QueryParam(tagParam) == "" && c.QueryParam("tags") != "" {
		tagParam = "tags"
	}
	tags, err := service.ParseIDList(tagParam, c.QueryParam(tagParam))
	if err != nil {
		return fail(err)
	}
	ingredients, err := service.ParseIDList("ingredients", c.QueryParam("ingredients"))
	if err != nil {
		return fail(err)
	}

	recipes, err := h.svc.List(c.Request().Context(), user, service.RecipeQuery{TagIDs: tags, IngredientIDs: ingredients})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, h.serializer.Many(serializer.OpList, recipes))
}

// Create godoc
// @Summary Create a recipe
// @Tags recipe
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param recipe body serializer.RecipeRequest true "Recipe"
// @Success 201 {object} serializer.RecipeSummary
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /recipe/recipes [post]
func (h *RecipeHandler) Create(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}
	var req serializer.RecipeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	in, err := req.Input(service.FullUpdate)
	if err != nil {
		return fail(err)
	}

	recipe, err := h.svc.Create(c.Request().Context(), user, in)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, h.serializer.View(serializer.OpCreate)(recipe))
}

// Retrieve godoc
// @Summary Get a recipe with nested tags and ingredients
// @Tags recipe
// @Produce json
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Success 200 {object} serializer.RecipeDetail
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipe/recipes/{id} [get]
func (h *RecipeHandler) Retrieve(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	recipe, err := h.svc.Retrieve(c.Request().Context(), user, id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, h.serializer.View(serializer.OpRetrieve)(recipe))
}

// Update godoc
// @Summary Update a recipe
// @Description PUT replaces the recipe and clears omitted tags and ingredients; PATCH changes only the fields sent.
// @Tags recipe
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Param recipe body serializer.RecipeRequest true "Recipe"
// @Success 200 {object} serializer.RecipeSummary
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipe/recipes/{id} [put]
// @Router /recipe/recipes/{id} [patch]
func (h *RecipeHandler) Update(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req serializer.RecipeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	mode := updateMode(c)
	in, err := req.Input(mode)
	if err != nil {
		return fail(err)
	}

	recipe, err := h.svc.Update(c.Request().Context(), user, id, in, mode)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, h.serializer.View(serializer.OpUpdate)(recipe))
}

// Delete godoc
// @Summary Delete a recipe
// @Tags recipe
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipe/recipes/{id} [delete]
func (h *RecipeHandler) Delete(c echo.Context) error {
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

// UploadImage godoc
// @Summary Upload a recipe image
// @Tags recipe
// @Accept multipart/form-data
// @Produce json
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Param image formData file true "Image file"
// @Success 200 {object} serializer.RecipeImage
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipe/recipes/{id}/upload-image [post]
func (h *RecipeHandler) UploadImage(c echo.Context) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var (
		name    string
		content io.Reader
	)
	if fh, ferr := c.FormFile(ImageField); ferr == nil {
		file, err := fh.Open()
		if err != nil {
			return fail(errors.NewValidationError(ImageField, "The submitted data was not a file."))
		}
		defer file.Close()
		name, content = fh.Filename, file
	}

	recipe, err := h.svc.UploadImage(c.Request().Context(), user, id, name, content)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, h.serializer.View(serializer.OpUploadImage)(recipe))
}
