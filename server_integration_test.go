package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"darlingdetails/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body io.Reader, token string, contentType string) *httptest.ResponseRecorder {
	// allow callers to pass nil for body safely
	req, _ := http.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func setupTestServer(t *testing.T) (*gin.Engine, config.Config) {
	// integration tests are opt-in. Set DB_DSN_TEST=1 and DB_DSN to run them.
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	gin.SetMode(gin.TestMode)
	t.Setenv("UPLOAD_BASE", t.TempDir())
	t.Setenv("STORAGE_DRIVER", config.DriverLocal)
	t.Setenv("KAFKA_BROKERS", "")
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.AutoMigrate = true
	log := zerolog.Nop()
	db, err := initDB(cfg, log)
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	r, closeFn, err := newRouter(context.Background(), cfg, db, log)
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	t.Cleanup(closeFn)
	return r, cfg
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return out
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestFullFlow(t *testing.T) {
	r, cfg := setupTestServer(t)

	// 1. Login as the seeded admin
	loginBody, _ := json.Marshal(map[string]string{"email": cfg.AdminEmail, "password": cfg.AdminPassword})
	resp := performRequest(r, http.MethodPost, "/api/users/login", bytes.NewBuffer(loginBody), "", "application/json")
	if resp.Code != http.StatusOK {
		t.Fatalf("login failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	token, _ := decodeJSON(t, resp)["token"].(string)
	if token == "" {
		t.Fatal("empty token in login response")
	}

	// 2. Wrong password
	badBody, _ := json.Marshal(map[string]string{"email": cfg.AdminEmail, "password": "nope"})
	resp = performRequest(r, http.MethodPost, "/api/users/login", bytes.NewBuffer(badBody), "", "application/json")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for wrong password got %d", resp.Code)
	}

	// 3. Category with a unique slug
	slug := fmt.Sprintf("test-%d", time.Now().UnixNano())
	catBody, _ := json.Marshal(map[string]string{"name": "Test Category", "slug": slug})
	resp = performRequest(r, http.MethodPost, "/api/categories", bytes.NewBuffer(catBody), token, "application/json")
	if resp.Code != http.StatusCreated {
		t.Fatalf("create category failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	cat, _ := decodeJSON(t, resp)["data"].(map[string]any)
	catID := uint(cat["id"].(float64))

	resp = performRequest(r, http.MethodPost, "/api/categories", bytes.NewBuffer(catBody), token, "application/json")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("duplicate slug: expected 400 got %d", resp.Code)
	}

	// 4. Create a product with an image
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	_ = mw.WriteField("name", "Vază ceramică")
	_ = mw.WriteField("price", "89.99")
	_ = mw.WriteField("quantity", "2")
	_ = mw.WriteField("categoryId", fmt.Sprint(catID))
	w, _ := mw.CreateFormFile("image", "vaza.png")
	_, _ = w.Write(pngBytes(t, 1600, 1200))
	_ = mw.Close()
	resp = performRequest(r, http.MethodPost, "/api/products", buf, token, mw.FormDataContentType())
	if resp.Code != http.StatusCreated {
		t.Fatalf("create product failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	product, _ := decodeJSON(t, resp)["data"].(map[string]any)
	productID := uint(product["id"].(float64))
	thumbURL, _ := product["thumbnailUrl"].(string)
	if thumbURL == "" || product["imageUrl"] == nil {
		t.Fatalf("product has no image urls: %v", product)
	}

	// 5. Derivatives are served with caching headers
	resp = performRequest(r, http.MethodGet, thumbURL, nil, "", "")
	if resp.Code != http.StatusOK || resp.Header().Get("Cache-Control") != "public, max-age=86400" {
		t.Fatalf("thumbnail status=%d cache=%q", resp.Code, resp.Header().Get("Cache-Control"))
	}

	// 6. Category cannot be deleted while it has products
	path := fmt.Sprintf("/api/categories/%d", catID)
	resp = performRequest(r, http.MethodDelete, path, nil, token, "")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 deleting used category got %d", resp.Code)
	}

	// 7. Delete the product, its derivatives go with it
	resp = performRequest(r, http.MethodDelete, fmt.Sprintf("/api/products/%d", productID), nil, token, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("delete product failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodGet, thumbURL, nil, "", "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected thumbnail gone, got %d", resp.Code)
	}
	resp = performRequest(r, http.MethodDelete, path, nil, token, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("delete category failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 8. Testimonials reject out of range ratings
	tBody, _ := json.Marshal(map[string]any{"name": "Ana", "content": "Minunat!", "rating": 6})
	resp = performRequest(r, http.MethodPost, "/api/testimonials", bytes.NewBuffer(tBody), "", "application/json")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for rating 6 got %d", resp.Code)
	}

	// 9. Settings are public to read
	resp = performRequest(r, http.MethodGet, "/api/store-settings", nil, "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("store settings status=%d", resp.Code)
	}

	// 10. Unauthorized writes are rejected
	unauth := performRequest(r, http.MethodDelete, fmt.Sprintf("/api/products/%d", productID), nil, "", "")
	if unauth.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthorized delete got %d", unauth.Code)
	}
}

func TestMigrateCommand(t *testing.T) {
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	cfg.AutoMigrate = true
	// running twice checks the seed is idempotent
	for i := 0; i < 2; i++ {
		if _, err := initDB(cfg, zerolog.Nop()); err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
	}
}
