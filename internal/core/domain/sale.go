package domain

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	DesignMaxLength = 100
	// QuantiteMax is the largest value the INTEGER column holds.
	QuantiteMax = math.MaxInt32
)

// Sale is a single row of the ventes table.
type Sale struct {
	NumProduit int64     `json:"numProduit"`
	Design     string    `json:"design"`
	Prix       float64   `json:"prix"`
	Quantite   int       `json:"quantite"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SaleInput carries the mutable fields of a sale for create and full replace.
type SaleInput struct {
	Design   string
	Prix     float64
	Quantite int
}

// Validate enforces the sale invariants: non-empty design of at most
// DesignMaxLength characters without NUL bytes, non-negative prix, and
// quantite between 0 and QuantiteMax.
func (in SaleInput) Validate() error {
	var fields []string
	design := strings.TrimSpace(in.Design)
	switch {
	case design == "":
		fields = append(fields, "design is required")
	case utf8.RuneCountInString(design) > DesignMaxLength:
		fields = append(fields, "design must be at most 100 characters")
	case strings.ContainsRune(design, 0):
		fields = append(fields, "design must not contain NUL characters")
	}
	if in.Prix < 0 {
		fields = append(fields, "prix must be greater than or equal to 0")
	}
	switch {
	case in.Quantite < 0:
		fields = append(fields, "quantite must be greater than or equal to 0")
	case in.Quantite > QuantiteMax:
		fields = append(fields, "quantite must be at most 2147483647")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
