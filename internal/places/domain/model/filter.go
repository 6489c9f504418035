package model

// Order directions for list filters.
const (
	Ascending  = "asc"
	Descending = "desc"
)

// ListFilter composes the predicate and ordering of a place listing. The
// owner ACL condition is not part of the filter: repositories always apply it
// on top of whatever the filter selects.
type ListFilter struct {
	// ParentUID filters on parent equality when ParentSet is true. A nil
	// ParentUID with ParentSet selects root nodes (explicit "null" filter).
	ParentUID *int64
	ParentSet bool

	// OrderField is the field to order by; empty means storage order. Name is
	// the only allowed field.
	OrderField     string
	OrderDirection string
}

// AllowedOrderFields lists the fields a caller may order by.
var AllowedOrderFields = []string{"name"}

// OrderAllowed reports whether field is a permitted order-by target.
func OrderAllowed(field string) bool {
	for _, allowed := range AllowedOrderFields {
		if field == allowed {
			return true
		}
	}
	return false
}
