package changeset

import (
	"strings"
	"time"

	"github.com/iliyamo/optitask/internal/apperr"
)

// NewProject holds the fields accepted when creating a project.
type NewProject struct {
	Name  string
	Color *string
}

// ProjectChanges is the partial update of a project.
type ProjectChanges struct {
	Name      Optional[string]
	Color     Field[string]
	UpdatedAt time.Time
}

// NewLabel holds the fields accepted when creating a label.
type NewLabel struct {
	Name  string
	Color *string
}

// LabelChanges is the partial update of a label.
type LabelChanges struct {
	Name      Optional[string]
	Color     Field[string]
	UpdatedAt time.Time
}

// DecodeNewProject validates a create payload. name is required.
func DecodeNewProject(p Payload) (NewProject, error) {
	name, color, err := decodeNamed(p)
	return NewProject{Name: name, Color: color}, err
}

// BuildProjectChanges validates an update payload and stamps UpdatedAt.
func BuildProjectChanges(p Payload, now time.Time) (ProjectChanges, error) {
	name, color, err := decodeNamedChanges(p)
	if err != nil {
		return ProjectChanges{}, err
	}
	return ProjectChanges{Name: name, Color: color, UpdatedAt: stamp(now)}, nil
}

// Assignments lists the columns the update writes, updated_at last.
func (c ProjectChanges) Assignments() []Assignment {
	var a assignments
	a = addOptional(a, "name", c.Name)
	a = addField(a, "color", c.Color)
	return append(a, Assignment{Column: "updated_at", Value: c.UpdatedAt})
}

// DecodeNewLabel validates a create payload. name is required.
func DecodeNewLabel(p Payload) (NewLabel, error) {
	name, color, err := decodeNamed(p)
	return NewLabel{Name: name, Color: color}, err
}

// BuildLabelChanges validates an update payload and stamps UpdatedAt.
func BuildLabelChanges(p Payload, now time.Time) (LabelChanges, error) {
	name, color, err := decodeNamedChanges(p)
	if err != nil {
		return LabelChanges{}, err
	}
	return LabelChanges{Name: name, Color: color, UpdatedAt: stamp(now)}, nil
}

// Assignments lists the columns the update writes, updated_at last.
func (c LabelChanges) Assignments() []Assignment {
	var a assignments
	a = addOptional(a, "name", c.Name)
	a = addField(a, "color", c.Color)
	return append(a, Assignment{Column: "updated_at", Value: c.UpdatedAt})
}

func decodeNamed(p Payload) (string, *string, error) {
	name, err := p.String("name")
	if err != nil {
		return "", nil, err
	}
	n, ok := name.Get()
	if !ok {
		return "", nil, apperr.BadRequestf("Field 'name' is required")
	}
	if n = strings.TrimSpace(n); n == "" {
		return "", nil, apperr.BadRequestf("Field 'name' cannot be empty")
	}
	color, err := p.NullableString("color")
	if err != nil {
		return "", nil, err
	}
	return n, color.Ptr(), nil
}

func decodeNamedChanges(p Payload) (Optional[string], Field[string], error) {
	name, err := requiredText(p, "name")
	if err != nil {
		return Optional[string]{}, Field[string]{}, err
	}
	color, err := p.NullableString("color")
	if err != nil {
		return Optional[string]{}, Field[string]{}, err
	}
	return name, color, nil
}

// requiredText decodes an optional non-nullable string that, when given,
// must not be blank. The value is stored trimmed.
func requiredText(p Payload, key string) (Optional[string], error) {
	o, err := p.String(key)
	if err != nil {
		return o, err
	}
	v, ok := o.Get()
	if !ok {
		return o, nil
	}
	if v = strings.TrimSpace(v); v == "" {
		return Optional[string]{}, apperr.BadRequestf("Field '%s' cannot be empty", key)
	}
	return Some(v), nil
}
