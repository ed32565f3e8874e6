package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ayusman/drishti/internal/store"
)

func newTestHandler(t *testing.T) *ProfileHandler {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return NewProfileHandler(s)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createProfile(t *testing.T, h *ProfileHandler, name string) profileResponse {
	t.Helper()

	rec := doJSON(t, h, http.MethodPost, "/api/profiles", map[string]interface{}{"name": name})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var created profileResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode created profile: %v", err)
	}
	return created
}

func TestProfileHandler_Create(t *testing.T) {
	h := newTestHandler(t)

	t.Run("applies defaults", func(t *testing.T) {
		created := createProfile(t, h, "defaults")

		if created.EARCloseThreshold != 0.21 {
			t.Errorf("close threshold = %v, want default 0.21", created.EARCloseThreshold)
		}
		if created.EAROpenThreshold != 0.25 {
			t.Errorf("open threshold = %v, want default 0.25", created.EAROpenThreshold)
		}
		if created.MinClosedFrames != 2 {
			t.Errorf("min closed frames = %d, want default 2", created.MinClosedFrames)
		}
		if created.ID == "" {
			t.Error("expected generated id")
		}
	})

	t.Run("requires name", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/profiles", map[string]interface{}{})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
	})

	t.Run("rejects inverted thresholds", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/profiles", map[string]interface{}{
			"name":                "inverted",
			"ear_close_threshold": 0.30,
			"ear_open_threshold":  0.20,
		})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
	})
}

func TestProfileHandler_GetUpdateDelete(t *testing.T) {
	h := newTestHandler(t)
	created := createProfile(t, h, "lifecycle")

	t.Run("get", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/profiles/"+created.ID, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		var got profileResponse
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
		if got.Name != "lifecycle" {
			t.Errorf("name = %q, want %q", got.Name, "lifecycle")
		}
	})

	t.Run("update", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPut, "/api/profiles/"+created.ID, map[string]interface{}{
			"ear_close_threshold": 0.18,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
		}

		var got profileResponse
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
		if got.EARCloseThreshold != 0.18 {
			t.Errorf("close threshold = %v, want 0.18", got.EARCloseThreshold)
		}
		if got.Name != "lifecycle" {
			t.Errorf("name = %q, untouched fields must survive", got.Name)
		}
	})

	t.Run("delete", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodDelete, "/api/profiles/"+created.ID, nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
		}

		rec = doJSON(t, h, http.MethodGet, "/api/profiles/"+created.ID, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d after delete, got %d", http.StatusNotFound, rec.Code)
		}
	})

	t.Run("missing profile returns 404", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/profiles/no-such-id", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})
}

func TestProfileHandler_List(t *testing.T) {
	h := newTestHandler(t)
	createProfile(t, h, "one")
	createProfile(t, h, "two")

	rec := doJSON(t, h, http.MethodGet, "/api/profiles", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response listProfilesResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatal(err)
	}
	if len(response.Profiles) != 2 {
		t.Errorf("profiles = %d, want 2", len(response.Profiles))
	}
}

func TestProfileHandler_Activate(t *testing.T) {
	h := newTestHandler(t)
	a := createProfile(t, h, "a")
	b := createProfile(t, h, "b")

	rec := doJSON(t, h, http.MethodPost, "/api/profiles/"+a.ID+"/activate", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/profiles/"+b.ID+"/activate", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var activated profileResponse
	if err := json.NewDecoder(rec.Body).Decode(&activated); err != nil {
		t.Fatal(err)
	}
	if !activated.Active {
		t.Error("activated profile should report active")
	}

	rec = doJSON(t, h, http.MethodGet, "/api/profiles/"+a.ID, nil)
	var got profileResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Active {
		t.Error("previously active profile should be deactivated")
	}

	t.Run("missing profile returns 404", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/profiles/no-such-id/activate", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})

	t.Run("activate rejects GET", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/profiles/"+b.ID+"/activate", nil)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
		}
	})
}
