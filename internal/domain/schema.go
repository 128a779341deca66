package domain

// Target range defaults. Standard campaign templates cap targets at one
// million; microplan templates allow up to one hundred million.
const (
	DefaultMinTarget int64 = 1
	DefaultMaxTarget int64 = 1_000_000

	MicroplanMinTarget int64 = 1
	MicroplanMaxTarget int64 = 100_000_000
)

// ColumnRule is one schema-driven validation rule for a sheet column.
type ColumnRule struct {
	Name      string `json:"name"`
	Required  bool   `json:"required"`
	Unique    bool   `json:"unique"`
	IsTarget  bool   `json:"isTarget"`
	MinTarget int64  `json:"minTarget,omitempty"`
	MaxTarget int64  `json:"maxTarget,omitempty"`
}

// SheetSchema is the dynamic validation schema for one resource type,
// fetched from MDMS.
type SheetSchema struct {
	Title   string       `json:"title"`
	Columns []ColumnRule `json:"columns"`
}

// Column returns the rule for a column name, if present.
func (s SheetSchema) Column(name string) (ColumnRule, bool) {
	for _, column := range s.Columns {
		if column.Name == name {
			return column, true
		}
	}
	return ColumnRule{}, false
}

// TargetColumns returns the subset of rules describing numeric target columns.
func (s SheetSchema) TargetColumns() []ColumnRule {
	var targets []ColumnRule
	for _, column := range s.Columns {
		if column.IsTarget {
			targets = append(targets, column)
		}
	}
	return targets
}

// BeneficiaryTargetMapping declares which sheet target columns are summed
// into one project target entry for a beneficiary type.
type BeneficiaryTargetMapping struct {
	BeneficiaryType string   `json:"beneficiaryType"`
	Columns         []string `json:"columns"`
}
