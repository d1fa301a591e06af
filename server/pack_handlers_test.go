package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"packvault/model"
)

func multipartRequest(t *testing.T, descriptor interface{}, files map[string][]byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)

	raw, err := json.Marshal(descriptor)
	if err != nil {
		t.Fatalf("marshal descriptor: %v", err)
	}
	if err := form.WriteField("pack", string(raw)); err != nil {
		t.Fatalf("write descriptor: %v", err)
	}
	for field, content := range files {
		part, err := form.CreateFormFile(field, field+".wav")
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	form.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/packs", body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	ctx := context.WithValue(req.Context(), ctxUserID, int64(1))
	return req.WithContext(ctx)
}

// The handler must reject bad forms before the pipeline (and its
// uploads) ever runs; these tests use a handler with a nil publisher,
// so reaching the pipeline would panic.
func handlerForValidation() *APIHandler {
	return &APIHandler{progress: NewProgressHub()}
}

func TestCreatePackRequiresAuth(t *testing.T) {
	h := handlerForValidation()
	req := httptest.NewRequest(http.MethodPost, "/api/packs", nil)
	rr := httptest.NewRecorder()

	h.CreatePackHandler(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", rr.Code)
	}
}

func TestCreatePackRejectsMissingDescriptor(t *testing.T) {
	h := handlerForValidation()
	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	form.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/packs", body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req = req.WithContext(context.WithValue(req.Context(), ctxUserID, int64(1)))

	rr := httptest.NewRecorder()
	h.CreatePackHandler(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rr.Code)
	}
}

func TestCreatePackRejectsMissingName(t *testing.T) {
	h := handlerForValidation()
	req := multipartRequest(t, map[string]interface{}{
		"creatorId":  1,
		"categoryId": 1,
	}, nil)

	rr := httptest.NewRecorder()
	h.CreatePackHandler(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rr.Code)
	}
}

func TestCreatePackRejectsDisabledInitialStatus(t *testing.T) {
	h := handlerForValidation()
	req := multipartRequest(t, map[string]interface{}{
		"name":       "p",
		"creatorId":  1,
		"categoryId": 1,
		"status":     model.PackDisabled,
	}, nil)

	rr := httptest.NewRecorder()
	h.CreatePackHandler(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rr.Code)
	}
}

func TestCreatePackRejectsMissingSampleFile(t *testing.T) {
	h := handlerForValidation()
	req := multipartRequest(t, map[string]interface{}{
		"name":       "p",
		"creatorId":  1,
		"categoryId": 1,
		"samples": []map[string]interface{}{
			{"name": "kick", "sampleType": "oneshot"},
		},
	}, nil) // sample_0 file deliberately absent

	rr := httptest.NewRecorder()
	h.CreatePackHandler(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rr.Code)
	}
}

func TestCreatePackRejectsStemMismatch(t *testing.T) {
	h := handlerForValidation()
	req := multipartRequest(t, map[string]interface{}{
		"name":       "p",
		"creatorId":  1,
		"categoryId": 1,
		"samples": []map[string]interface{}{
			{"name": "bass", "sampleType": "loop", "hasStems": true, "stems": []string{"low"}},
		},
	}, map[string][]byte{
		"sample_0": []byte("audio"),
		// stem_0_0 deliberately absent
	})

	rr := httptest.NewRecorder()
	h.CreatePackHandler(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rr.Code)
	}
}

func TestBannerCTAValidation(t *testing.T) {
	req := &model.CreateBannerRequest{Title: "t", ImageURL: "u", CTALabel: "Buy"}
	if msg := validateBannerRequest(req); msg == "" {
		t.Fatal("CTA label without URL must be rejected")
	}

	req = &model.CreateBannerRequest{Title: "t", ImageURL: "u", CTALabel: "Buy", CTAURL: "/pricing"}
	if msg := validateBannerRequest(req); msg != "" {
		t.Fatalf("paired CTA rejected: %s", msg)
	}

	req = &model.CreateBannerRequest{Title: "t", ImageURL: "u"}
	if msg := validateBannerRequest(req); msg != "" {
		t.Fatalf("CTA-less banner rejected: %s", msg)
	}
	if req.Audience != model.AudienceAll {
		t.Fatalf("audience not defaulted: %q", req.Audience)
	}
}
