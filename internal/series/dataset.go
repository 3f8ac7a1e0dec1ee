package series

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed data/economic.yaml
var sampleYAML []byte

// ErrEmptyDataset is returned when a data file decodes to zero observations.
var ErrEmptyDataset = errors.New("dataset has no observations")

// Dataset is an ordered run of observations, oldest first.
type Dataset []Observation

var sample Dataset

func init() {
	ds, err := Decode(bytes.NewReader(sampleYAML))
	if err != nil {
		panic(fmt.Sprintf("series: embedded sample is invalid: %v", err))
	}
	sample = ds
}

// Sample returns a copy of the embedded quarterly data set.
func Sample() Dataset {
	return sample.Clone()
}

type fileObservation struct {
	Date       string  `yaml:"date"`
	SelicAnual float64 `yaml:"selic_anual"`
	IPCA       float64 `yaml:"ipca"`
	PIB        float64 `yaml:"pib"`
	Cambio     float64 `yaml:"cambio"`
}

type fileDataset struct {
	Observations []fileObservation `yaml:"observations"`
}

// Decode reads a YAML data set of the form used by the embedded sample.
func Decode(r io.Reader) (Dataset, error) {
	var raw fileDataset
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDataset
		}
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if len(raw.Observations) == 0 {
		return nil, ErrEmptyDataset
	}

	ds := make(Dataset, 0, len(raw.Observations))
	for i, o := range raw.Observations {
		d, err := time.Parse(DateLayout, o.Date)
		if err != nil {
			return nil, fmt.Errorf("observation %d: invalid date %q: %w", i, o.Date, err)
		}
		ds = append(ds, Observation{
			Date:       d,
			SelicAnual: o.SelicAnual,
			IPCA:       o.IPCA,
			PIB:        o.PIB,
			Cambio:     o.Cambio,
		})
	}
	return ds, nil
}

// Encode writes ds in the YAML shape accepted by Decode.
func Encode(w io.Writer, ds Dataset) error {
	raw := fileDataset{Observations: make([]fileObservation, 0, len(ds))}
	for _, o := range ds {
		raw.Observations = append(raw.Observations, fileObservation{
			Date:       o.Date.Format(DateLayout),
			SelicAnual: o.SelicAnual,
			IPCA:       o.IPCA,
			PIB:        o.PIB,
			Cambio:     o.Cambio,
		})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(raw); err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	return enc.Close()
}

// Clone returns an independent copy of ds.
func (ds Dataset) Clone() Dataset {
	if ds == nil {
		return nil
	}
	out := make(Dataset, len(ds))
	copy(out, ds)
	return out
}

// Latest returns the last observation in declaration order.
func (ds Dataset) Latest() (Observation, bool) {
	if len(ds) == 0 {
		return Observation{}, false
	}
	return ds[len(ds)-1], true
}

// Values extracts one field as a plain slice.
func (ds Dataset) Values(f Field) []float64 {
	out := make([]float64, len(ds))
	for i, o := range ds {
		out[i] = o.Value(f)
	}
	return out
}

// Filter keeps observations on or after the cutoff implied by r relative to now.
func (ds Dataset) Filter(r Range, now time.Time) Dataset {
	cutoff, ok := r.Cutoff(now)
	if !ok {
		return ds.Clone()
	}
	out := make(Dataset, 0, len(ds))
	for _, o := range ds {
		if !o.Date.Before(cutoff) {
			out = append(out, o)
		}
	}
	return out
}

// Equal reports whether both data sets hold the same observations in the same order.
func (ds Dataset) Equal(other Dataset) bool {
	if len(ds) != len(other) {
		return false
	}
	for i := range ds {
		a, b := ds[i], other[i]
		if !a.Date.Equal(b.Date) || a.SelicAnual != b.SelicAnual || a.IPCA != b.IPCA ||
			a.PIB != b.PIB || a.Cambio != b.Cambio {
			return false
		}
	}
	return true
}
