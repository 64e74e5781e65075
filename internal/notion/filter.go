package notion

// Filter is a database query filter. Either a compound (And) or a single
// property condition is set.
type Filter struct {
	And []Filter `json:"and,omitempty"`

	Property    string             `json:"property,omitempty"`
	Checkbox    *CheckboxCondition `json:"checkbox,omitempty"`
	MultiSelect *ContainsCondition `json:"multi_select,omitempty"`
	Title       *ContainsCondition `json:"title,omitempty"`
}

type CheckboxCondition struct {
	Equals bool `json:"equals"`
}

type ContainsCondition struct {
	Contains string `json:"contains"`
}

// And combines filters, dropping nil entries. A single remaining filter is
// still wrapped so the request shape stays uniform.
func And(filters ...*Filter) *Filter {
	out := &Filter{}
	for _, f := range filters {
		if f == nil {
			continue
		}
		out.And = append(out.And, *f)
	}
	if len(out.And) == 0 {
		return nil
	}
	return out
}

func CheckboxEquals(property string, v bool) *Filter {
	return &Filter{Property: property, Checkbox: &CheckboxCondition{Equals: v}}
}

func MultiSelectContains(property, value string) *Filter {
	return &Filter{Property: property, MultiSelect: &ContainsCondition{Contains: value}}
}

func TitleContains(property, value string) *Filter {
	return &Filter{Property: property, Title: &ContainsCondition{Contains: value}}
}

// Sort orders query results. Timestamp sorts use Timestamp, property sorts
// use Property.
type Sort struct {
	Property  string `json:"property,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Direction string `json:"direction"`
}

// NewestFirst sorts by page creation time, descending.
var NewestFirst = Sort{Timestamp: "created_time", Direction: "descending"}

// Query describes one database query page.
type Query struct {
	Filter      *Filter
	Sorts       []Sort
	StartCursor string
	PageSize    int
}

// QueryResult is one page of query results in upstream order.
type QueryResult struct {
	Pages      []Page
	NextCursor string
	HasMore    bool
}
