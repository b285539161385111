package valueobject

import (
	"strings"
)

// ---------------------------------------------------------------------------
// ProductType – immutable value object
// ---------------------------------------------------------------------------

// ProductType identifies which loan-sizing formula a calculation uses.
// The set is closed: only the four package-level values below are valid.
type ProductType struct {
	value string
}

const (
	productFixAndFlip      = "FnF"
	productWholeTail       = "WholeTail"
	productBridgePurchase  = "Bridge-Purchase"
	productBridgeRefinance = "Bridge-Refi"
)

var (
	ProductFixAndFlip      = ProductType{value: productFixAndFlip}
	ProductWholeTail       = ProductType{value: productWholeTail}
	ProductBridgePurchase  = ProductType{value: productBridgePurchase}
	ProductBridgeRefinance = ProductType{value: productBridgeRefinance}
)

// Lookup keys are lower-cased so clients may send either the wire code or
// the long product name.
var validProductTypes = map[string]ProductType{
	"fnf":              ProductFixAndFlip,
	"fixandflip":       ProductFixAndFlip,
	"fix-and-flip":     ProductFixAndFlip,
	"wholetail":        ProductWholeTail,
	"bridge-purchase":  ProductBridgePurchase,
	"bridgepurchase":   ProductBridgePurchase,
	"bridge-refi":      ProductBridgeRefinance,
	"bridge-refinance": ProductBridgeRefinance,
	"bridgerefinance":  ProductBridgeRefinance,
}

// NewProductType parses a product code. Unrecognised codes return an
// *UnknownProductError carrying the raw value.
func NewProductType(s string) (ProductType, error) {
	v, ok := validProductTypes[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return ProductType{}, &UnknownProductError{Value: s}
	}
	return v, nil
}

// ProductTypes lists every supported product in display order.
func ProductTypes() []ProductType {
	return []ProductType{ProductFixAndFlip, ProductWholeTail, ProductBridgePurchase, ProductBridgeRefinance}
}

// String returns the wire code of the product.
func (p ProductType) String() string { return p.value }

// IsZero returns true if the product has not been initialised.
func (p ProductType) IsZero() bool { return p.value == "" }

// Equal returns true when both products carry the same value.
func (p ProductType) Equal(other ProductType) bool { return p.value == other.value }

// MarshalText encodes the product as its wire code.
func (p ProductType) MarshalText() ([]byte, error) { return []byte(p.value), nil }

// UnmarshalText decodes a wire code, rejecting unknown products. Empty input
// leaves the zero value.
func (p *ProductType) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*p = ProductType{}
		return nil
	}
	v, err := NewProductType(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// SizesOffARV reports whether the product's maximum loan is derived from the
// after-repair value, which makes ARV a required input.
func (p ProductType) SizesOffARV() bool {
	return p.value == productFixAndFlip || p.value == productWholeTail
}

// ---------------------------------------------------------------------------
// LoanPurpose – immutable value object
// ---------------------------------------------------------------------------

// LoanPurpose records why the borrower is taking the loan.
type LoanPurpose struct {
	value string
}

const (
	loanPurposePurchase  = "Purchase"
	loanPurposeRefinance = "Refinance"
)

var (
	LoanPurposePurchase  = LoanPurpose{value: loanPurposePurchase}
	LoanPurposeRefinance = LoanPurpose{value: loanPurposeRefinance}
)

var validLoanPurposes = map[string]LoanPurpose{
	"purchase":  LoanPurposePurchase,
	"refinance": LoanPurposeRefinance,
	"refi":      LoanPurposeRefinance,
}

// NewLoanPurpose parses a loan purpose. A blank value defaults to Purchase.
func NewLoanPurpose(s string) (LoanPurpose, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return LoanPurposePurchase, nil
	}
	v, ok := validLoanPurposes[strings.ToLower(s)]
	if !ok {
		return LoanPurpose{}, &InvalidInputError{Field: "loan_purpose", Reason: "must be Purchase or Refinance, got " + s}
	}
	return v, nil
}

// String returns the display form of the purpose.
func (p LoanPurpose) String() string { return p.value }

// IsZero returns true if the purpose has not been initialised.
func (p LoanPurpose) IsZero() bool { return p.value == "" }

// Equal returns true when both purposes carry the same value.
func (p LoanPurpose) Equal(other LoanPurpose) bool { return p.value == other.value }

// MarshalText encodes the purpose as its display form.
func (p LoanPurpose) MarshalText() ([]byte, error) { return []byte(p.value), nil }

// UnmarshalText decodes a purpose; blank input means Purchase.
func (p *LoanPurpose) UnmarshalText(b []byte) error {
	v, err := NewLoanPurpose(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
