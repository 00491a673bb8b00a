package item

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/medivault/shell/internal/client"
)

// ErrImageType is returned for attachments that are not JPEG or PNG.
var ErrImageType = errors.New("item: image must be JPEG or PNG")

const imageTypeMsg = "File must be a JPG, JPEG, or PNG image"

// Form is the state of one new-item form. It is owned by the UI loop.
type Form struct {
	values map[Field]string
	errs   Errors
	req    Requirements
	image  *client.Attachment
}

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{values: map[Field]string{}, errs: Errors{}}
}

// Value returns the current value of f.
func (fm *Form) Value(f Field) string { return fm.values[f] }

// Errors returns the current error map. Callers must not modify it.
func (fm *Form) Errors() Errors { return fm.errs }

// Requirements returns the measurement requirements of the selected group.
func (fm *Form) Requirements() Requirements { return fm.req }

// Image returns the attached image, or nil.
func (fm *Form) Image() *client.Attachment { return fm.image }

// Set stores value and validates it.
func (fm *Form) Set(f Field, value string) {
	if f == ItemGroup {
		fm.SetGroup(Group(value))
		return
	}
	fm.values[f] = value
	fm.validate(f)
}

// Blur validates f as when focus leaves it. Leaving a measurement also
// validates its unit.
func (fm *Form) Blur(f Field) {
	fm.validate(f)
	switch f {
	case Dimension:
		fm.validate(DimensionUnit)
	case Weight:
		fm.validate(WeightUnit)
	}
}

// SetGroup selects g and drops measurement values and errors the group no
// longer requires.
func (fm *Form) SetGroup(g Group) {
	fm.values[ItemGroup] = string(g)
	fm.validate(ItemGroup)

	fm.req = RequirementsFor(g)
	if !fm.req.Dimensions {
		fm.values[Dimension], fm.values[DimensionUnit] = "", ""
		fm.errs = fm.errs.Without(Dimension, DimensionUnit)
	}
	if !fm.req.Weight {
		fm.values[Weight], fm.values[WeightUnit] = "", ""
		fm.errs = fm.errs.Without(Weight, WeightUnit)
	}
}

// AttachImage sets the image attachment after sniffing its content type.
// A rejected file clears any previous attachment.
func (fm *Form) AttachImage(name string, data []byte) error {
	mt := mimetype.Detect(data)
	if !mt.Is("image/jpeg") && !mt.Is("image/png") {
		fm.image = nil
		fm.errs = ApplyValidation(fm.errs, Image, imageTypeMsg, true)
		return fmt.Errorf("%w: got %s", ErrImageType, mt.String())
	}
	fm.image = &client.Attachment{Name: name, ContentType: mt.String(), Data: data}
	fm.errs = ApplyValidation(fm.errs, Image, "", false)
	return nil
}

// AttachImageFile reads path and attaches it.
func (fm *Form) AttachImageFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("item: read image: %w", err)
	}
	return fm.AttachImage(filepath.Base(path), data)
}

// ClearImage removes the attachment and its error.
func (fm *Form) ClearImage() {
	fm.image = nil
	fm.errs = fm.errs.Without(Image)
}

// CanSave reports whether no field currently has an error.
func (fm *Form) CanSave() bool { return len(fm.errs) == 0 }

// ValidateAll runs every rule and returns the resulting errors.
func (fm *Form) ValidateAll() Errors {
	for _, f := range Fields {
		fm.validate(f)
	}
	return fm.errs
}

// Payload builds the request body. Dimension and weight carry their unit,
// separated by a space.
func (fm *Form) Payload() client.ItemPayload {
	v := fm.values
	return client.ItemPayload{
		ItemName:    v[ItemName],
		ItemGroup:   v[ItemGroup],
		Brand:       v[Brand],
		Model:       v[Model],
		Unit:        v[Unit],
		Dimension:   v[Dimension] + " " + v[DimensionUnit],
		Weight:      v[Weight] + " " + v[WeightUnit],
		Description: v[Description],
		Quantity:    v[Quantity],
	}
}

// ReplaceErrors swaps the form's errors for the ones the server reported.
func (fm *Form) ReplaceErrors(server Errors) {
	errs := Errors{}
	for f, msg := range server {
		errs = ApplyValidation(errs, f, msg, msg != "")
	}
	fm.errs = errs
}

func (fm *Form) validate(f Field) {
	msg, bad := Validate(f, fm.values[f], fm.req)
	fm.errs = ApplyValidation(fm.errs, f, msg, bad)
}
