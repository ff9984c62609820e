package sheetorm

import "fmt"

// RelationKind describes the direction and cardinality of a relation.
type RelationKind int

const (
	// HasOne: the target table holds the foreign key, one match expected.
	HasOne RelationKind = iota
	// HasMany: the target table holds the foreign key, all matches attach.
	HasMany
	// BelongsTo: the local table holds the foreign key.
	BelongsTo
)

func (k RelationKind) String() string {
	switch k {
	case HasOne:
		return "hasOne"
	case HasMany:
		return "hasMany"
	case BelongsTo:
		return "belongsTo"
	default:
		return "unknown"
	}
}

// Relation declares a directed link to another Model. The inverse direction,
// if wanted, is declared separately on the target. ForeignKey names the
// column on the target for HasOne/HasMany and on the local table for
// BelongsTo; LocalKey is the column on the other side of that match.
type Relation struct {
	Kind       RelationKind
	Target     *Model
	ForeignKey string
	LocalKey   string
}

// joinKeys returns the column read on the parent row and the column read on
// the related row.
func (r Relation) joinKeys() (parentCol, relatedCol string) {
	if r.Kind == BelongsTo {
		return r.ForeignKey, r.LocalKey
	}
	return r.LocalKey, r.ForeignKey
}

// Relate attaches relation declarations to the model. Models involved in a
// cycle are constructed first and related in a second pass; once attached,
// the declarations are immutable, so Relate may be called only once.
func (m *Model) Relate(relations map[string]Relation) error {
	if m.relations != nil {
		return fmt.Errorf("relations already attached to table %q", m.table)
	}
	for name, rel := range relations {
		if rel.Target == nil {
			return fmt.Errorf("relation %q: nil target model", name)
		}
		if rel.ForeignKey == "" || rel.LocalKey == "" {
			return fmt.Errorf("relation %q: foreign and local key columns are required", name)
		}
	}
	m.relations = make(map[string]Relation, len(relations))
	for name, rel := range relations {
		m.relations[name] = rel
	}
	return nil
}
