package item

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValidate(t *testing.T) {
	all := Requirements{Dimensions: true, Weight: true}
	none := Requirements{}

	tests := []struct {
		field   Field
		value   string
		req     Requirements
		wantMsg string
	}{
		{ItemName, "", none, "Item name is required"},
		{ItemName, "Office Chair", none, ""},
		{ItemName, "Chair2", none, "Item name must contain only letters"},
		{ItemName, " Chair", none, "Item name must contain only letters"},
		{ItemGroup, "", none, "Item Group is required"},
		{ItemGroup, "FURNITURE", none, ""},
		{Brand, "", none, "Brand Name is required"},
		{Brand, "HP 2024", none, ""},
		{Model, "", none, "Model is required"},
		{Model, "X-100", none, ""},
		{Model, "X 100", none, "Spaces are not allowed"},
		{Unit, "", none, "Unit is required"},
		{Unit, "pcs", none, ""},
		{Unit, "pcs1", none, "Unit must contain only letters"},
		{Dimension, "", none, ""},
		{Dimension, "garbage", none, ""},
		{Dimension, "", all, "Dimension is required"},
		{Dimension, "10*20", all, ""},
		{Dimension, "10.5*20*3.25", all, ""},
		{Dimension, "10x20", all, "Enter dimension in the format W*H*D or W*H"},
		{Dimension, "10 * 20", all, "Enter dimension in the format W*H*D or W*H"},
		{Dimension, "1*2*3*4", all, "Enter dimension in the format W*H*D or W*H"},
		{DimensionUnit, "", none, ""},
		{DimensionUnit, "", all, "Dimension is required with the MEASURING UNIT"},
		{DimensionUnit, "cm", all, ""},
		{Weight, "", none, ""},
		{Weight, "", all, "Weight is required"},
		{Weight, "2.5", all, ""},
		{Weight, "-2", all, "Weight must be a positive number"},
		{Weight, "2.", all, "Weight must be a positive number"},
		{WeightUnit, "", all, "Weight is required with the MEASURING UNIT"},
		{WeightUnit, "", none, ""},
		{Description, "", none, "Description is required"},
		{Description, "Ergonomic", none, ""},
		{Quantity, "", none, "Quantity is required"},
		{Quantity, "12", none, ""},
		{Quantity, "0", none, "Quantity must be a positive number"},
		{Quantity, "012", none, "Quantity must be a positive number"},
		{Quantity, "1.5", none, "Quantity must be a positive number"},
	}
	for _, tt := range tests {
		msg, bad := Validate(tt.field, tt.value, tt.req)
		if msg != tt.wantMsg || bad != (tt.wantMsg != "") {
			t.Errorf("Validate(%s, %q, %+v) = (%q, %v), want %q", tt.field, tt.value, tt.req, msg, bad, tt.wantMsg)
		}
	}
}

func TestRequirementsFor(t *testing.T) {
	tests := map[Group]Requirements{
		ComputersAndLaptops: {Dimensions: true, Weight: true},
		ComputerHardware:    {Dimensions: true, Weight: true},
		Furniture:           {Dimensions: true, Weight: true},
		PrintersAndScanners: {Dimensions: true, Weight: true},
		ComputerAccessories: {Weight: true},
		OfficeSupplies:      {},
		Other:               {},
		"":                  {},
		"UNKNOWN":           {},
	}
	for g, want := range tests {
		if got := RequirementsFor(g); got != want {
			t.Errorf("RequirementsFor(%q) = %+v, want %+v", g, got, want)
		}
	}
}

func TestApplyValidationHasNoStaleKeys(t *testing.T) {
	errs := Errors{}
	errs = ApplyValidation(errs, ItemName, "Item name is required", true)
	errs = ApplyValidation(errs, Quantity, "Quantity is required", true)

	before := errs
	errs = ApplyValidation(errs, ItemName, "", false)

	if diff := cmp.Diff(Errors{Quantity: "Quantity is required"}, errs); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
	if _, ok := before[ItemName]; !ok {
		t.Error("ApplyValidation modified its input")
	}

	errs = ApplyValidation(errs, Quantity, "", false)
	if len(errs) != 0 {
		t.Errorf("expected empty errors, got %v", errs)
	}
}

func TestApplyValidationFromNil(t *testing.T) {
	errs := ApplyValidation(nil, Brand, "Brand Name is required", true)
	if errs[Brand] != "Brand Name is required" {
		t.Errorf("errs = %v", errs)
	}
}
