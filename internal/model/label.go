package model

// Label is the type set of the short owned labels that recipes are
// associated with.
type Label interface {
	Tag | Ingredient
	GetID() uint
	GetName() string
	OwnerID() uint
}

// Tag is a short label owned by one user.
type Tag struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	UserID uint   `json:"-" gorm:"not null;index"`
	Name   string `json:"name" gorm:"size:255;not null;index"`
}

func (t Tag) GetID() uint     { return t.ID }
func (t Tag) GetName() string { return t.Name }
func (t Tag) OwnerID() uint   { return t.UserID }

// Ingredient is a short label owned by one user.
type Ingredient struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	UserID uint   `json:"-" gorm:"not null;index"`
	Name   string `json:"name" gorm:"size:255;not null;index"`
}

func (i Ingredient) GetID() uint     { return i.ID }
func (i Ingredient) GetName() string { return i.Name }
func (i Ingredient) OwnerID() uint   { return i.UserID }

// NewLabel builds a label of type T owned by owner.
func NewLabel[T Label](owner uint, name string) T {
	var l T
	switch p := any(&l).(type) {
	case *Tag:
		p.UserID, p.Name = owner, name
	case *Ingredient:
		p.UserID, p.Name = owner, name
	}
	return l
}

// Rename returns a copy of l carrying name.
func Rename[T Label](l T, name string) T {
	switch p := any(&l).(type) {
	case *Tag:
		p.Name = name
	case *Ingredient:
		p.Name = name
	}
	return l
}

// LabelKind describes how a label type is stored and linked to recipes.
type LabelKind struct {
	// Name is the singular resource name used in messages.
	Name string
	// Table is the label table name.
	Table string
	// JoinTable is the recipe association table.
	JoinTable string
	// JoinColumn is the label foreign key inside JoinTable.
	JoinColumn string
}

var (
	TagKind        = LabelKind{Name: "tag", Table: "tags", JoinTable: "recipe_tags", JoinColumn: "tag_id"}
	IngredientKind = LabelKind{Name: "ingredient", Table: "ingredients", JoinTable: "recipe_ingredients", JoinColumn: "ingredient_id"}
)

// KindOf returns the storage description for the label type T.
func KindOf[T Label]() LabelKind {
	var zero T
	if _, ok := any(zero).(Ingredient); ok {
		return IngredientKind
	}
	return TagKind
}
