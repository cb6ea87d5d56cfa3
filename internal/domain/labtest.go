package domain

import "github.com/google/uuid"

// Category is a closed set of labels assigned to a test by keyword rules.
type Category string

const (
	CategoryHematology   Category = "Hematology"
	CategoryDiabetes     Category = "Diabetes"
	CategoryHormones     Category = "Hormones"
	CategoryVitamins     Category = "Vitamins & Minerals"
	CategoryLiver        Category = "Liver Function"
	CategoryKidney       Category = "Kidney Function"
	CategoryCardiac      Category = "Cardiac"
	CategoryUrine        Category = "Urine Tests"
	CategoryMicrobiology Category = "Microbiology"
	CategoryImmunology   Category = "Immunology"
	CategoryTumorMarkers Category = "Tumor Markers"
	CategoryPregnancy    Category = "Pregnancy"
	CategoryGeneral      Category = "General"
)

const (
	// DefaultSampleType is used when a line carries no specimen text.
	DefaultSampleType = "Serum"
	DefaultReportTime = "24-48 hours"
	descriptionSuffix = " sample analysis"
)

// Categories lists every known label in rule evaluation order, General last.
var Categories = []Category{
	CategoryHematology,
	CategoryDiabetes,
	CategoryHormones,
	CategoryVitamins,
	CategoryLiver,
	CategoryKidney,
	CategoryCardiac,
	CategoryUrine,
	CategoryMicrobiology,
	CategoryImmunology,
	CategoryTumorMarkers,
	CategoryPregnancy,
	CategoryGeneral,
}

// Valid reports whether c is one of the known labels.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// TestEntry is one row recovered from a rate list.
type TestEntry struct {
	SerialNumber int
	Name         string
	Price        int
	SampleType   string
}

// CatalogTest is a classified entry ready for storage.
type CatalogTest struct {
	ID                  uuid.UUID `json:"id" yaml:"id"`
	Name                string    `json:"name" yaml:"name"`
	Description         string    `json:"description" yaml:"description"`
	Price               int       `json:"price" yaml:"price"`
	Category            Category  `json:"category" yaml:"category"`
	Symptoms            []string  `json:"symptoms" yaml:"symptoms"`
	SampleType          string    `json:"-" yaml:"sample_type"`
	PreparationRequired bool      `json:"preparation_required" yaml:"preparation_required"`
	ReportTime          string    `json:"report_time" yaml:"report_time"`
	HomeCollection      bool      `json:"home_collection" yaml:"home_collection"`
}

// Describe builds the stored description for an entry.
func Describe(entry TestEntry) string {
	return entry.Name + " - " + entry.SampleType + descriptionSuffix
}
