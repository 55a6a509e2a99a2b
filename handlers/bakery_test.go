package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dorysbakehouse/bakehouse/backend/internal/bakery"
	"github.com/dorysbakehouse/bakehouse/backend/internal/storage"
	"github.com/dorysbakehouse/bakehouse/backend/internal/store"
)

func init() { gin.SetMode(gin.TestMode) }

type testServer struct {
	router  *gin.Engine
	dataDir string
	upDir   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dataDir := filepath.Join(t.TempDir(), "data")
	upDir := filepath.Join(t.TempDir(), "uploads")

	fb, err := store.NewFileBackend(dataDir)
	require.NoError(t, err)
	st := store.New(fb)
	local, err := storage.NewLocalStorage(upDir, storage.URLPrefix)
	require.NoError(t, err)
	uploads := storage.Instrumented(local)

	svc := bakery.NewService(st, uploads, store.NewStoreSequencer(st))
	require.NoError(t, svc.Init(t.Context()))

	r := gin.New()
	NewBakeryHandler(svc).Register(r)
	RegisterUploads(r, uploads)
	return &testServer{router: r, dataDir: dataDir, upDir: upDir}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) get(path string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (s *testServer) del(path string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodDelete, path, nil))
}

func (s *testServer) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return s.do(req)
}

type upload struct {
	field, name, content string
}

func (s *testServer) postForm(t *testing.T, path string, fields map[string]string, files ...upload) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return s.do(req)
}

func (s *testServer) readDoc(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(s.dataDir, name+".json"))
	require.NoError(t, err)
	return b
}

func TestProductEndToEnd(t *testing.T) {
	s := newTestServer(t)

	w := s.postForm(t, "/api/products",
		map[string]string{"name": "Chocolate Cake", "price": "500", "description": "Rich"},
		upload{"image", "cake.jpg", "jpeg-bytes"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var p bakery.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, "Chocolate Cake", p.Name)
	assert.Equal(t, "500", p.Price)
	assert.True(t, strings.HasPrefix(p.ImageURL, "/uploads/products/"), p.ImageURL)

	// the stored image is served back
	w = s.get(p.ImageURL)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jpeg-bytes", w.Body.String())

	w = s.get("/api/products")
	require.Equal(t, http.StatusOK, w.Code)
	var list []bakery.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, []bakery.Product{p}, list)

	w = s.del("/api/products/1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Product Deleted"}`, w.Body.String())

	w = s.get("/api/products")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestCreateProductWithoutImage(t *testing.T) {
	s := newTestServer(t)
	before := s.readDoc(t, bakery.DocProducts)

	w := s.postForm(t, "/api/products", map[string]string{"name": "Cake", "price": "1"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Product image required"}`, w.Body.String())

	// not even multipart
	w = s.postJSON("/api/products", `{"name":"Cake"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, before, s.readDoc(t, bakery.DocProducts))
}

func TestUnreadableImageIsServerError(t *testing.T) {
	s := newTestServer(t)
	before := s.readDoc(t, bakery.DocProducts)

	for _, path := range []string{"/api/products", "/api/today"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Form = url.Values{}
		// a header with neither content nor a temp file cannot be opened
		req.MultipartForm = &multipart.Form{
			Value: map[string][]string{"name": {"Cake"}},
			File:  map[string][]*multipart.FileHeader{"image": {{Filename: "cake.jpg"}}},
		}
		w := s.do(req)
		require.Equal(t, http.StatusInternalServerError, w.Code, path)
		assert.Contains(t, w.Body.String(), "open image upload", path)
	}
	assert.Equal(t, before, s.readDoc(t, bakery.DocProducts))
	assert.Equal(t, "null", strings.TrimSpace(string(s.readDoc(t, bakery.DocToday))))
}

func TestGalleryBatch(t *testing.T) {
	s := newTestServer(t)

	w := s.postForm(t, "/api/gallery", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"No files uploaded"}`, w.Body.String())

	w = s.postForm(t, "/api/gallery", nil, upload{"files", "a.jpg", "a"}, upload{"files", "b.jpg", "b"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var items []bakery.GalleryItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].ID)
	assert.Equal(t, int64(2), items[1].ID)
	assert.NotEqual(t, items[0].URL, items[1].URL)

	w = s.postForm(t, "/api/gallery", nil, upload{"files", "c.jpg", "c"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 3)
	assert.Equal(t, int64(3), items[2].ID)
}

func TestDeleteMissingIDStillSucceeds(t *testing.T) {
	s := newTestServer(t)
	w := s.postForm(t, "/api/gallery", nil, upload{"files", "a.jpg", "a"})
	require.Equal(t, http.StatusOK, w.Code)
	before := s.readDoc(t, bakery.DocGallery)

	w = s.del("/api/gallery/42")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Image Deleted"}`, w.Body.String())
	assert.Equal(t, before, s.readDoc(t, bakery.DocGallery))
}

func TestReviewDefaults(t *testing.T) {
	s := newTestServer(t)

	w := s.postJSON("/api/reviews", `{"name":"Ann","message":"Lovely","rating":4}`)
	require.Equal(t, http.StatusOK, w.Code)

	// no body at all
	w = s.do(httptest.NewRequest(http.MethodPost, "/api/reviews", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Success bool          `json:"success"`
		Review  bakery.Review `json:"review"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, `"Anonymous"`, string(resp.Review.Name))
	assert.Equal(t, `""`, string(resp.Review.Message))
	assert.Equal(t, "5", string(resp.Review.Rating))
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`, resp.Review.Date)

	w = s.get("/api/reviews")
	var list []bakery.Review
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, resp.Review.ID, list[0].ID)
	assert.Equal(t, `"Ann"`, string(list[1].Name))

	w = s.postJSON("/api/reviews", `{"name":`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid JSON body"}`, w.Body.String())

	w = s.del("/api/reviews/" + string(mustJSON(t, list[1].ID)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Review Deleted"}`, w.Body.String())
}

func TestAboutReplace(t *testing.T) {
	s := newTestServer(t)

	w := s.get("/api/about")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "About Dory's Bakehouse")

	w = s.postJSON("/api/about", `{"title":"T","description":"D","description2":"D2","extra":"dropped"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"About Updated","data":{"title":"T","description":"D","description2":"D2"}}`, w.Body.String())

	w = s.get("/api/about")
	assert.JSONEq(t, `{"title":"T","description":"D","description2":"D2"}`, w.Body.String())

	// values of any JSON type are stored as sent
	w = s.postJSON("/api/about", `{"title":"T","description2":2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"message":"About Updated","data":{"title":"T","description":"","description2":2}}`, w.Body.String())

	w = s.postJSON("/api/about", `["not","an","object"]`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid JSON body"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "Go struct")

	require.NoError(t, os.WriteFile(filepath.Join(s.dataDir, "about.json"), []byte("{oops"), 0o644))
	w = s.get("/api/about")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", w.Body.String())
}

func TestTodayLifecycle(t *testing.T) {
	s := newTestServer(t)

	w := s.get("/api/today")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", w.Body.String())

	w = s.postForm(t, "/api/today", map[string]string{"name": "Sourdough"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Image required"}`, w.Body.String())

	w = s.postForm(t, "/api/today",
		map[string]string{"name": "Sourdough", "ingredients": "flour, water, salt"},
		upload{"image", "loaf.png", "png"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var b bakery.TodayBake
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	assert.Equal(t, "Sourdough", b.Name)
	assert.True(t, strings.HasPrefix(b.ImageURL, "/uploads/today/"), b.ImageURL)

	w = s.get("/api/today")
	assert.JSONEq(t, string(mustJSON(t, b)), w.Body.String())

	w = s.del("/api/today")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Today Bake Cleared"}`, w.Body.String())
	assert.Equal(t, "null", strings.TrimSpace(string(s.readDoc(t, bakery.DocToday))))

	w = s.get("/api/today")
	assert.Equal(t, "null", w.Body.String())
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}
