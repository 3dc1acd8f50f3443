package entities

import "strings"

// DrugSearchHit is a single autocomplete/search match
type DrugSearchHit struct {
	DrugName    string `json:"drugName"`
	GSN         int    `json:"gsn,omitempty"`
	BrandName   string `json:"brandName,omitempty"`
	GenericName string `json:"genericName,omitempty"`
	IsGeneric   bool   `json:"isGeneric"`
}

// DrugDetails describes a drug monograph
type DrugDetails struct {
	GSN               int      `json:"gsn,omitempty"`
	BrandName         string   `json:"brandName"`
	GenericName       string   `json:"genericName"`
	Description       string   `json:"description"`
	SideEffects       []string `json:"sideEffects"`
	Dosage            string   `json:"dosage"`
	Storage           string   `json:"storage"`
	Contraindications []string `json:"contraindications"`

	AdministrationInfo string   `json:"administrationInfo,omitempty"`
	Interactions       []string `json:"interactions,omitempty"`
	Monitoring         string   `json:"monitoring,omitempty"`
}

// DrugKey normalizes a drug name for lookups in local tables.
func DrugKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// AlternativeKind distinguishes generic equivalents from therapeutic substitutes
type AlternativeKind string

const (
	AlternativeGeneric     AlternativeKind = "generic"
	AlternativeTherapeutic AlternativeKind = "therapeutic"
)

// DrugAlternative is a cheaper or equivalent option with its prices embedded
type DrugAlternative struct {
	DrugName    string                `json:"drugName"`
	GSN         int                   `json:"gsn,omitempty"`
	Kind        AlternativeKind       `json:"kind"`
	LowestPrice float64               `json:"lowestPrice"`
	Pharmacies  []PharmacyPriceResult `json:"pharmacies"`
}
