package service

import (
	"context"
	"strings"

	"recipes/internal/errors"
	"recipes/internal/model"
	"recipes/internal/repository"
)

// LabelQuery narrows a label listing.
type LabelQuery struct {
	AssignedOnly bool
}

// LabelService is the owned collection of tags or ingredients. Every
// operation is scoped to the calling user.
type LabelService[T model.Label] interface {
	List(ctx context.Context, user *model.User, q LabelQuery) ([]T, error)
	Create(ctx context.Context, user *model.User, name string) (*T, error)
	Retrieve(ctx context.Context, user *model.User, id uint) (*T, error)
	Rename(ctx context.Context, user *model.User, id uint, name string) (*T, error)
	Delete(ctx context.Context, user *model.User, id uint) error
}

type labelService[T model.Label] struct {
	repo repository.LabelRepository[T]
	kind model.LabelKind
}

// NewLabelService creates the owned collection backed by repo.
func NewLabelService[T model.Label](repo repository.LabelRepository[T]) LabelService[T] {
	return &labelService[T]{repo: repo, kind: model.KindOf[T]()}
}

// NewTagService creates the tag collection.
func NewTagService(repo repository.LabelRepository[model.Tag]) LabelService[model.Tag] {
	return NewLabelService(repo)
}

// NewIngredientService creates the ingredient collection.
func NewIngredientService(repo repository.LabelRepository[model.Ingredient]) LabelService[model.Ingredient] {
	return NewLabelService(repo)
}

func (s *labelService[T]) List(ctx context.Context, user *model.User, q LabelQuery) ([]T, error) {
	labels, err := s.repo.ListByOwner(ctx, user.ID, repository.LabelFilter{AssignedOnly: q.AssignedOnly})
	if err != nil {
		return nil, notFound(err, "list %ss", s.kind.Name)
	}
	return labels, nil
}

// Create stores a new label owned by user.
func (s *labelService[T]) Create(ctx context.Context, user *model.User, name string) (*T, error) {
	name, err := labelName(name)
	if err != nil {
		return nil, err
	}
	label := model.NewLabel[T](user.ID, name)
	if err := s.repo.Create(ctx, &label); err != nil {
		return nil, notFound(err, "create %s", s.kind.Name)
	}
	return &label, nil
}

func (s *labelService[T]) Retrieve(ctx context.Context, user *model.User, id uint) (*T, error) {
	label, err := s.repo.FindOwned(ctx, user.ID, id)
	if err != nil {
		return nil, notFound(err, "retrieve %s %d", s.kind.Name, id)
	}
	return label, nil
}

func (s *labelService[T]) Rename(ctx context.Context, user *model.User, id uint, name string) (*T, error) {
	name, err := labelName(name)
	if err != nil {
		return nil, err
	}
	label, err := s.Retrieve(ctx, user, id)
	if err != nil {
		return nil, err
	}
	renamed := model.Rename(*label, name)
	if err := s.repo.Update(ctx, &renamed); err != nil {
		return nil, notFound(err, "rename %s %d", s.kind.Name, id)
	}
	return &renamed, nil
}

func (s *labelService[T]) Delete(ctx context.Context, user *model.User, id uint) error {
	if err := s.repo.Delete(ctx, user.ID, id); err != nil {
		return notFound(err, "delete %s %d", s.kind.Name, id)
	}
	return nil
}

func labelName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.NewValidationError("name", "This field may not be blank.")
	}
	return name, nil
}
