package series

import "time"

// DateLayout is the ISO calendar date layout used by the data set.
const DateLayout = "2006-01-02"

// Observation is one quarterly reading of the four indicators.
type Observation struct {
	Date       time.Time `json:"date" db:"obs_date"`
	SelicAnual float64   `json:"selic_anual" db:"selic_anual"`
	IPCA       float64   `json:"ipca" db:"ipca"`
	PIB        float64   `json:"pib" db:"pib"`
	Cambio     float64   `json:"cambio" db:"cambio"`
}

// Value returns the reading for field f. Unknown fields read as zero.
func (o Observation) Value(f Field) float64 {
	switch f {
	case FieldSelic:
		return o.SelicAnual
	case FieldIPCA:
		return o.IPCA
	case FieldPIB:
		return o.PIB
	case FieldCambio:
		return o.Cambio
	}
	return 0
}
