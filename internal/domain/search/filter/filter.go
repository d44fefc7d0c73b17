package filter

import "fmt"

// MaxConditions is the maximum number of equality conditions per predicate.
const MaxConditions = 32

// Form is the shape a predicate is rendered in for the index.
type Form int

const (
	// FormNone is the empty predicate: no filtering.
	FormNone Form = iota
	// FormRaw is a single key/value pair passed through untranslated.
	FormRaw
	// FormAnd is a conjunction of equality constraints.
	FormAnd
)

// String returns the form name.
func (f Form) String() string {
	switch f {
	case FormRaw:
		return "raw"
	case FormAnd:
		return "and"
	default:
		return "none"
	}
}

// Predicate is a metadata filter handed to the vector index.
// The zero value is the empty predicate.
type Predicate struct {
	form       Form
	conditions []Condition
}

// Raw creates a single-condition predicate that is passed to the index as-is.
func Raw(c Condition) Predicate {
	return Predicate{form: FormRaw, conditions: []Condition{c}}
}

// And creates a conjunctive predicate over the given equality conditions.
func And(conditions ...Condition) (Predicate, error) {
	if len(conditions) == 0 {
		return Predicate{}, fmt.Errorf("and predicate requires at least one condition")
	}
	if len(conditions) > MaxConditions {
		return Predicate{}, fmt.Errorf("too many conditions (max %d)", MaxConditions)
	}
	cs := make([]Condition, len(conditions))
	copy(cs, conditions)
	return Predicate{form: FormAnd, conditions: cs}, nil
}

// Form returns the predicate shape.
func (p Predicate) Form() Form { return p.form }

// Conditions returns the equality conditions. Every form is a conjunction.
func (p Predicate) Conditions() []Condition { return p.conditions }

// IsEmpty reports whether the predicate filters nothing.
func (p Predicate) IsEmpty() bool { return len(p.conditions) == 0 }

// Where renders the predicate as a Chroma-style where document:
// {"k": "v"} for raw, {"$and": [{"k": {"$eq": "v"}}, ...]} for and, nil when empty.
func (p Predicate) Where() map[string]any {
	switch p.form {
	case FormRaw:
		c := p.conditions[0]
		return map[string]any{c.key: c.value}
	case FormAnd:
		clauses := make([]any, 0, len(p.conditions))
		for _, c := range p.conditions {
			clauses = append(clauses, map[string]any{c.key: map[string]any{"$eq": c.value}})
		}
		return map[string]any{"$and": clauses}
	default:
		return nil
	}
}

// String returns a debug representation.
func (p Predicate) String() string {
	return fmt.Sprintf("%s%v", p.form, p.conditions)
}

// Condition is an exact match on a metadata key.
type Condition struct {
	key   string
	value string
}

// NewMatch creates an exact match condition.
func NewMatch(key, value string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, value: value}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Value returns the exact match value.
func (c Condition) Value() string { return c.value }

// String returns key=value.
func (c Condition) String() string { return c.key + "=" + c.value }
