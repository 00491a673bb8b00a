package item

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/medivault/shell/internal/client"
)

// ListPath is where a successful submit navigates.
const ListPath = "/item"

const (
	msgCreated    = "Item successfully added!"
	msgBadRequest = "Failed to add new item. Please check your inputs."
	msgConflict   = "Similar item is already present in the inventory with an id : %s"
	msgConflictNoID = "Similar item is already present in the inventory."
	msgFailed     = "Failed to add new item. Please try again."
)

// Creator is the part of the REST client Submit needs.
type Creator interface {
	CreateItem(ctx context.Context, token string, item client.ItemPayload, img *client.Attachment) error
}

// ValidationError is returned when the form has local errors and nothing
// was sent.
type ValidationError struct {
	Errors Errors
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for f := range e.Errors {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)
	return "item: invalid fields: " + strings.Join(fields, ", ")
}

// BadRequestError carries the field errors the backend reported with a 400.
type BadRequestError struct {
	Fields Errors
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("item: rejected by backend (%d field errors)", len(e.Fields))
}

// ConflictError means a similar item already exists. ItemID is empty when
// the backend's answer could not be read; Err then says why.
type ConflictError struct {
	ItemID string
	Err    error
}

func (e *ConflictError) Error() string {
	if e.ItemID == "" {
		return fmt.Sprintf("item: conflicts with an existing item (id unreadable: %v)", e.Err)
	}
	return "item: conflicts with existing item " + e.ItemID
}

func (e *ConflictError) Unwrap() error { return e.Err }

// Request validates the whole form and returns what Submit should send.
func (fm *Form) Request() (client.ItemPayload, *client.Attachment, error) {
	if errs := fm.ValidateAll(); len(errs) > 0 {
		return client.ItemPayload{}, nil, &ValidationError{Errors: errs}
	}
	return fm.Payload(), fm.image, nil
}

// Submit sends the item and classifies the backend answer: nil on success,
// *BadRequestError on 400, *ConflictError on 409, a wrapped error otherwise.
func Submit(ctx context.Context, c Creator, token string, p client.ItemPayload, img *client.Attachment) error {
	err := c.CreateItem(ctx, token, p, img)
	if err == nil {
		return nil
	}

	var se *client.StatusError
	if !errors.As(err, &se) {
		return fmt.Errorf("item: submit: %w", err)
	}
	switch se.Code {
	case http.StatusBadRequest:
		return &BadRequestError{Fields: parseFieldErrors(se.Body)}
	case http.StatusConflict:
		var body struct {
			ItemID client.ID `json:"itemId"`
		}
		if err := json.Unmarshal(se.Body, &body); err != nil {
			return &ConflictError{Err: fmt.Errorf("decode conflict body: %w", err)}
		}
		if body.ItemID == "" {
			return &ConflictError{Err: errors.New("conflict body has no itemId")}
		}
		return &ConflictError{ItemID: string(body.ItemID)}
	default:
		return fmt.Errorf("item: submit: %w", err)
	}
}

// Outcome is what the shell shows after a submit.
type Outcome struct {
	OK       bool
	Title    string
	Message  string
	Navigate string
}

// Apply folds a Submit result into the form and returns the dialog to
// show. The form keeps its values on every failure.
func (fm *Form) Apply(err error) Outcome {
	var (
		bad      *BadRequestError
		conflict *ConflictError
		invalid  *ValidationError
	)
	switch {
	case err == nil:
		return Outcome{OK: true, Title: "Success!", Message: msgCreated, Navigate: ListPath}
	case errors.As(err, &bad):
		fm.ReplaceErrors(bad.Fields)
		return Outcome{Title: "Error!", Message: msgBadRequest}
	case errors.As(err, &conflict):
		if conflict.ItemID == "" {
			return Outcome{Title: "Conflict!", Message: msgConflictNoID}
		}
		return Outcome{Title: "Conflict!", Message: fmt.Sprintf(msgConflict, conflict.ItemID)}
	case errors.As(err, &invalid):
		return Outcome{Title: "Error!", Message: msgBadRequest}
	default:
		return Outcome{Title: "Error!", Message: msgFailed}
	}
}

// parseFieldErrors reads a {"field": "message"} body. Non-string values are
// rendered as text; an unreadable body yields no field errors.
func parseFieldErrors(body []byte) Errors {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return Errors{}
	}
	out := make(Errors, len(raw))
	for k, v := range raw {
		switch v := v.(type) {
		case string:
			out[Field(k)] = v
		case nil:
		default:
			out[Field(k)] = fmt.Sprint(v)
		}
	}
	return out
}
