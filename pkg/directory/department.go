package directory

import (
	"fmt"

	"github.com/ssargent/tablestore/pkg/record"
	"github.com/ssargent/tablestore/pkg/value"
)

// Department is an academic department.
type Department struct {
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

// DepartmentField enumerates Department fields in declaration order.
type DepartmentField int

const (
	DepartmentName DepartmentField = iota
	DepartmentAbbreviation
)

func (f DepartmentField) String() string {
	switch f {
	case DepartmentName:
		return "name"
	case DepartmentAbbreviation:
		return "abbreviation"
	}
	return ""
}

// ParseDepartmentField parses the string form of a DepartmentField.
func ParseDepartmentField(s string) (DepartmentField, error) {
	return Departments.ParseField(s)
}

// Departments is the Department schema.
var Departments = record.MustSchema("department",
	[]record.Column[DepartmentField]{
		{Name: DepartmentName, Kind: value.KindString},
		{Name: DepartmentAbbreviation, Kind: value.KindString},
	},
	func(d Department) []value.Value {
		return []value.Value{
			value.String(d.Name),
			value.String(d.Abbreviation),
		}
	},
	func(v []value.Value) (Department, error) {
		name, err := v[0].AsString()
		if err != nil {
			return Department{}, fmt.Errorf("name: %w", err)
		}
		abbr, err := v[1].AsString()
		if err != nil {
			return Department{}, fmt.Errorf("abbreviation: %w", err)
		}
		return Department{Name: name, Abbreviation: abbr}, nil
	},
)
