// Package item holds the new-inventory-item form: per-field validation rules,
// the error reducer, and the submit outcome mapping.
package item

import (
	"maps"
	"regexp"
)

// Field names a form field. Values match the backend JSON keys.
type Field string

const (
	ItemName      Field = "itemName"
	ItemGroup     Field = "itemGroup"
	Brand         Field = "brand"
	Model         Field = "model"
	Unit          Field = "unit"
	Dimension     Field = "dimension"
	DimensionUnit Field = "dimensionUnit"
	Weight        Field = "weight"
	WeightUnit    Field = "weightUnit"
	Description   Field = "description"
	Quantity      Field = "quantity"
	Image         Field = "image"
)

// Fields lists the text fields in display order.
var Fields = []Field{
	ItemName, ItemGroup, Brand, Model, Unit,
	Dimension, DimensionUnit, Weight, WeightUnit,
	Description, Quantity,
}

// Group is an inventory item group.
type Group string

const (
	ComputersAndLaptops Group = "COMPUTERS_AND_LAPTOPS"
	ComputerAccessories Group = "COMPUTER_ACCESSORIES"
	ComputerHardware    Group = "COMPUTER_HARDWARE"
	PrintersAndScanners Group = "PRINTERS_AND_SCANNERS"
	Furniture           Group = "FURNITURE"
	OfficeSupplies      Group = "OFFICE_SUPPLIES"
	Other               Group = "OTHER"
)

// Groups lists the selectable groups with their labels.
var Groups = []struct {
	Value Group
	Label string
}{
	{ComputersAndLaptops, "Computers & Laptops"},
	{ComputerAccessories, "Computer Accessories"},
	{ComputerHardware, "Computer Hardware"},
	{PrintersAndScanners, "Printers & Scanners"},
	{Furniture, "Furniture"},
	{OfficeSupplies, "Office Supplies"},
	{Other, "Other"},
}

var (
	DimensionUnits = []string{"mm", "cm", "m", "in", "ft"}
	WeightUnits    = []string{"kg", "g", "lb", "oz"}
)

// Requirements says which optional measurements a group needs.
type Requirements struct {
	Dimensions bool
	Weight     bool
}

// RequirementsFor returns the measurement requirements of g. Unknown groups
// require nothing.
func RequirementsFor(g Group) Requirements {
	switch g {
	case ComputersAndLaptops, ComputerHardware, Furniture, PrintersAndScanners:
		return Requirements{Dimensions: true, Weight: true}
	case ComputerAccessories:
		return Requirements{Weight: true}
	default:
		return Requirements{}
	}
}

var (
	lettersRe   = regexp.MustCompile(`^[a-zA-Z][a-zA-Z\s]*$`)
	noSpaceRe   = regexp.MustCompile(`^\S*$`)
	dimensionRe = regexp.MustCompile(`^\d+(\.\d+)?\*\d+(\.\d+)?(\*\d+(\.\d+)?)?$`)
	decimalRe   = regexp.MustCompile(`^\d+(\.\d+)?$`)
	quantityRe  = regexp.MustCompile(`^[1-9]\d*$`)
)

// Validate checks one field value. It returns the message to show and
// whether the value is invalid. Fields gated by req are accepted as-is when
// the group does not require them.
func Validate(f Field, value string, req Requirements) (string, bool) {
	switch f {
	case ItemName:
		if value == "" {
			return "Item name is required", true
		}
		if !lettersRe.MatchString(value) {
			return "Item name must contain only letters", true
		}
	case ItemGroup:
		if value == "" {
			return "Item Group is required", true
		}
	case Brand:
		if value == "" {
			return "Brand Name is required", true
		}
	case Model:
		if value == "" {
			return "Model is required", true
		}
		if !noSpaceRe.MatchString(value) {
			return "Spaces are not allowed", true
		}
	case Unit:
		if value == "" {
			return "Unit is required", true
		}
		if !lettersRe.MatchString(value) {
			return "Unit must contain only letters", true
		}
	case Dimension:
		if !req.Dimensions {
			break
		}
		if value == "" {
			return "Dimension is required", true
		}
		if !dimensionRe.MatchString(value) {
			return "Enter dimension in the format W*H*D or W*H", true
		}
	case DimensionUnit:
		if req.Dimensions && value == "" {
			return "Dimension is required with the MEASURING UNIT", true
		}
	case Weight:
		if !req.Weight {
			break
		}
		if value == "" {
			return "Weight is required", true
		}
		if !decimalRe.MatchString(value) {
			return "Weight must be a positive number", true
		}
	case WeightUnit:
		if req.Weight && value == "" {
			return "Weight is required with the MEASURING UNIT", true
		}
	case Description:
		if value == "" {
			return "Description is required", true
		}
	case Quantity:
		if value == "" {
			return "Quantity is required", true
		}
		if !quantityRe.MatchString(value) {
			return "Quantity must be a positive number", true
		}
	}
	return "", false
}

// Errors maps a field to its current message. Only invalid fields have keys.
type Errors map[Field]string

// ApplyValidation returns errs updated with one validation result. errs is
// not modified; a valid result removes the field's key.
func ApplyValidation(errs Errors, f Field, msg string, bad bool) Errors {
	next := make(Errors, len(errs)+1)
	maps.Copy(next, errs)
	if bad {
		next[f] = msg
	} else {
		delete(next, f)
	}
	return next
}

// Without returns a copy of errs with the given fields removed.
func (errs Errors) Without(fields ...Field) Errors {
	next := maps.Clone(errs)
	if next == nil {
		next = Errors{}
	}
	for _, f := range fields {
		delete(next, f)
	}
	return next
}
