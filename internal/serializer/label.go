package serializer

import (
	"strings"

	"recipes/internal/model"
)

// LabelRequest is the write payload of a tag or ingredient.
type LabelRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

// Normalize trims surrounding whitespace.
func (r *LabelRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

// Label is the representation of a tag or ingredient.
type Label struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// LabelOf represents a single label.
func LabelOf[T model.Label](l T) Label {
	return Label{ID: l.GetID(), Name: l.GetName()}
}

// Labels represents a list of labels, never returning nil.
func Labels[T model.Label](ls []T) []Label {
	out := make([]Label, 0, len(ls))
	for _, l := range ls {
		out = append(out, LabelOf(l))
	}
	return out
}
