// Package labs normalizes biomarker values extracted from uploaded lab
// reports so the submission payload can carry consistent low/normal/high
// flags even when the extraction service omits them.
package labs

import "strings"

// Flag marks a metric value relative to its reference range.
type Flag string

const (
	FlagLow    Flag = "low"
	FlagNormal Flag = "normal"
	FlagHigh   Flag = "high"
)

// Metric is one extracted biomarker reading.
type Metric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
	Flag  Flag    `json:"flag"`
}

// Range is the reference interval for a biomarker.
type Range struct {
	Low  float64
	High float64
	Unit string
}

// ReferenceRanges covers the standard panel the extraction service reports.
var ReferenceRanges = map[string]Range{
	"hemoglobin":        {Low: 12.0, High: 17.0, Unit: "g/dL"},
	"ferritin":          {Low: 30, High: 300, Unit: "ng/mL"},
	"vitamin_d":         {Low: 30, High: 100, Unit: "ng/mL"},
	"vitamin_b12":       {Low: 200, High: 900, Unit: "pg/mL"},
	"folic_acid":        {Low: 3, High: 17, Unit: "ng/mL"},
	"fasting_glucose":   {Low: 70, High: 100, Unit: "mg/dL"},
	"hba1c":             {Low: 4.0, High: 5.7, Unit: "%"},
	"total_cholesterol": {Low: 125, High: 200, Unit: "mg/dL"},
	"ldl":               {Low: 0, High: 100, Unit: "mg/dL"},
	"hdl":               {Low: 40, High: 200, Unit: "mg/dL"},
	"triglycerides":     {Low: 0, High: 150, Unit: "mg/dL"},
	"alt":               {Low: 0, High: 40, Unit: "U/L"},
	"ast":               {Low: 0, High: 40, Unit: "U/L"},
	"creatinine":        {Low: 0.6, High: 1.2, Unit: "mg/dL"},
	"uric_acid":         {Low: 3.5, High: 7.2, Unit: "mg/dL"},
	"tsh":               {Low: 0.4, High: 4.0, Unit: "mIU/L"},
}

// FlagFor grades a value against the reference range for name. Unknown
// biomarkers are reported normal.
func FlagFor(name string, value float64) Flag {
	ref, ok := ReferenceRanges[strings.ToLower(name)]
	if !ok {
		return FlagNormal
	}
	switch {
	case value < ref.Low:
		return FlagLow
	case value > ref.High:
		return FlagHigh
	default:
		return FlagNormal
	}
}

// Normalize fills in flags for metrics the extraction service left unflagged.
// Explicit non-normal flags from the extractor are kept as-is.
func Normalize(metrics []Metric) []Metric {
	out := make([]Metric, 0, len(metrics))
	for _, m := range metrics {
		m.Name = strings.ToLower(m.Name)
		if m.Flag == "" || m.Flag == FlagNormal {
			m.Flag = FlagFor(m.Name, m.Value)
		}
		if m.Unit == "" {
			if ref, ok := ReferenceRanges[m.Name]; ok {
				m.Unit = ref.Unit
			}
		}
		out = append(out, m)
	}
	return out
}
