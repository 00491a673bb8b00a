package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var testPaths = Paths{
	Profile: "/adminuser/get-profile",
	Logout:  "/auth/logout",
	Item:    "/inventory-item/add",
}

func TestGetProfile(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bare object", `{"userId":42,"firstName":"Ada","lastName":"Perera","username":"ada","role":"ADMIN","imagePath":"ada.png"}`},
		{"users envelope", `{"statusCode":200,"users":{"userId":"42","firstName":"Ada","lastName":"Perera","username":"ada","role":"ADMIN","imagePath":"ada.png"}}`},
	}
	want := &Profile{UserID: "42", FirstName: "Ada", LastName: "Perera", Username: "ada", Role: "ADMIN", ImagePath: "ada.png"}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotAuth, gotReqID string
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet || r.URL.Path != testPaths.Profile {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				gotAuth = r.Header.Get("Authorization")
				gotReqID = r.Header.Get("X-Request-ID")
				io.WriteString(w, tt.body)
			}))
			defer ts.Close()

			c := NewHTTPClient(ts.URL, testPaths, time.Second)
			got, err := c.GetProfile(context.Background(), "tok")
			if err != nil {
				t.Fatalf("GetProfile: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("profile mismatch (-want +got):\n%s", diff)
			}
			if gotAuth != "Bearer tok" {
				t.Errorf("Authorization = %q", gotAuth)
			}
			if gotReqID == "" {
				t.Error("missing X-Request-ID header")
			}
		})
	}
}

func TestGetProfileServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := NewHTTPClient(ts.URL, testPaths, time.Second).GetProfile(context.Background(), "tok")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if se.Code != http.StatusInternalServerError {
		t.Errorf("Code = %d", se.Code)
	}
}

func TestLogout(t *testing.T) {
	var called bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = r.Method == http.MethodPost && r.URL.Path == testPaths.Logout
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	if err := NewHTTPClient(ts.URL, testPaths, time.Second).Logout(context.Background(), "tok"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if !called {
		t.Error("logout endpoint not called")
	}
}

func TestCreateItemMultipart(t *testing.T) {
	item := ItemPayload{
		ItemName: "Laptop", ItemGroup: "COMPUTERS_AND_LAPTOPS", Brand: "Dell", Model: "XPS13",
		Unit: "pcs", Dimension: "30*20*2 cm", Weight: "1.2 kg", Description: "Work laptop", Quantity: "3",
	}
	img := &Attachment{Name: "laptop.png", ContentType: "image/png", Data: []byte("\x89PNG fake")}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}
		f, hdr, err := r.FormFile("item")
		if err != nil {
			t.Errorf("item part: %v", err)
			return
		}
		if ct := hdr.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("item part Content-Type = %q", ct)
		}
		var got ItemPayload
		json.NewDecoder(f).Decode(&got)
		if diff := cmp.Diff(item, got); diff != "" {
			t.Errorf("item mismatch (-want +got):\n%s", diff)
		}

		imgFile, imgHdr, err := r.FormFile("image")
		if err != nil {
			t.Errorf("image part: %v", err)
			return
		}
		data, _ := io.ReadAll(imgFile)
		if string(data) != string(img.Data) || imgHdr.Filename != "laptop.png" {
			t.Errorf("image part = %q (%s)", data, imgHdr.Filename)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer ts.Close()

	c := NewHTTPClient(ts.URL, testPaths, time.Second)
	if err := c.CreateItem(context.Background(), "tok", item, img); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
}

func TestCreateItemConflict(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, err := r.FormFile("image"); err == nil {
			t.Error("image part sent without an attachment")
		}
		w.WriteHeader(http.StatusConflict)
		io.WriteString(w, `{"itemId":"X-17"}`)
	}))
	defer ts.Close()

	err := NewHTTPClient(ts.URL, testPaths, time.Second).CreateItem(context.Background(), "", ItemPayload{}, nil)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if se.Code != http.StatusConflict || string(se.Body) != `{"itemId":"X-17"}` {
		t.Errorf("StatusError = %d %s", se.Code, se.Body)
	}
}

func TestIDUnmarshal(t *testing.T) {
	tests := []struct {
		in      string
		want    ID
		wantErr bool
	}{
		{`42`, "42", false},
		{`"X-17"`, "X-17", false},
		{`null`, "", false},
		{`true`, "", true},
	}
	for _, tt := range tests {
		var id ID
		err := json.Unmarshal([]byte(tt.in), &id)
		if (err != nil) != tt.wantErr {
			t.Errorf("Unmarshal(%s) err = %v", tt.in, err)
			continue
		}
		if id != tt.want {
			t.Errorf("Unmarshal(%s) = %q, want %q", tt.in, id, tt.want)
		}
	}
}
