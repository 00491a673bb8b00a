// Package client provides the REST and push-channel clients for the MediVault
// backend. Types mirror the backend wire format.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is a backend identifier. The backend sends numeric ids for users and
// string ids for items; both decode into the same type.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Profile is the user record returned by the profile endpoint.
type Profile struct {
	UserID    ID     `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	ImagePath string `json:"imagePath"`
}

// profileResponse accepts both a bare profile and the {"users": {...}}
// envelope some backend builds return.
type profileResponse struct {
	Profile
	Users *Profile `json:"users"`
}

// ItemPayload is the JSON part of the item-creation request. Dimension and
// weight already carry their unit suffix.
type ItemPayload struct {
	ItemName    string `json:"itemName"`
	ItemGroup   string `json:"itemGroup"`
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	Unit        string `json:"unit"`
	Dimension   string `json:"dimension"`
	Weight      string `json:"weight"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
}

// Attachment is a binary file sent alongside a form.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, string(e.Body))
}
