package series

import "fmt"

// Field identifies one of the four tracked indicators.
type Field string

const (
	FieldSelic  Field = "selic_anual"
	FieldIPCA   Field = "ipca"
	FieldPIB    Field = "pib"
	FieldCambio Field = "cambio"
)

// Fields lists the indicators in display order.
var Fields = []Field{FieldSelic, FieldIPCA, FieldPIB, FieldCambio}

var fieldLabels = map[Field]string{
	FieldSelic:  "SELIC",
	FieldIPCA:   "IPCA",
	FieldPIB:    "PIB",
	FieldCambio: "Câmbio",
}

// Label returns the short display name used in tables and the correlation matrix.
func (f Field) Label() string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return string(f)
}

// Unit returns the display unit appended to values of this field.
func (f Field) Unit() string {
	if f == FieldCambio {
		return ""
	}
	return "%"
}

// Valid reports whether f is one of the known indicators.
func (f Field) Valid() bool {
	_, ok := fieldLabels[f]
	return ok
}

// ParseField converts a raw key such as "ipca" into a Field.
func ParseField(s string) (Field, error) {
	f := Field(s)
	if !f.Valid() {
		return "", fmt.Errorf("unknown field %q", s)
	}
	return f, nil
}
