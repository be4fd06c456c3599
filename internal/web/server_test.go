package web

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idcard/internal/apiclient"
	"idcard/internal/app"
	"idcard/internal/storage"
)

// remote fakes the ID-card API.
type remote struct {
	mu       sync.Mutex
	created  []url.Values
	deleted  []string
	students []apiclient.Student
	lists    int
}

func (f *remote) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/college-info", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(apiclient.CollegeInfo{Name: "Tech Institute", Address: "Main Road"})
	})
	mux.HandleFunc("/admin/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"message":"Invalid credentials"}`)
			return
		}
		_, _ = io.WriteString(w, `{"token":"tok"}`)
	})
	mux.HandleFunc("/students", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		switch r.Method {
		case http.MethodPost:
			require.NoError(t, r.ParseMultipartForm(1<<20))
			f.created = append(f.created, r.MultipartForm.Value)
			f.students = append(f.students, apiclient.Student{ID: "s1", Name: r.FormValue("name")})
			w.WriteHeader(http.StatusCreated)
		default:
			f.lists++
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(f.students)
		}
	})
	mux.HandleFunc("/students/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if r.Method == http.MethodDelete {
			id := strings.TrimPrefix(r.URL.Path, "/students/")
			f.deleted = append(f.deleted, id)
			f.students = nil
		}
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

type harness struct {
	t      *testing.T
	remote *remote
	srv    *httptest.Server
	client *http.Client
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rm := &remote{}
	api := httptest.NewServer(rm.handler(t))
	t.Cleanup(api.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend := storage.NewMemory(storage.Options{})
	registry := app.NewRegistry(apiclient.New(api.URL, api.URL, time.Second), backend, logger, app.Options{})

	r := gin.New()
	New(registry, backend, logger, Options{VisitorSigningKey: "k", VisitorTTL: time.Hour}).Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &harness{t: t, remote: rm, srv: srv, client: &http.Client{Jar: jar}}
}

func (h *harness) get(path string) (int, string) {
	h.t.Helper()
	resp, err := h.client.Get(h.srv.URL + path)
	require.NoError(h.t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func (h *harness) postForm(path string, form url.Values) (int, string) {
	h.t.Helper()
	resp, err := h.client.PostForm(h.srv.URL+path, form)
	require.NoError(h.t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func (h *harness) postMultipart(path string, fields map[string]string, fileField, filename string, data []byte) (int, string) {
	h.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(h.t, w.WriteField(k, v))
	}
	if fileField != "" {
		part, err := w.CreateFormFile(fileField, filename)
		require.NoError(h.t, err)
		_, _ = part.Write(data)
	}
	require.NoError(h.t, w.Close())

	resp, err := h.client.Post(h.srv.URL+path, w.FormDataContentType(), &buf)
	require.NoError(h.t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func completeForm() map[string]string {
	return map[string]string{
		"name": "Asha", "email": "a@x.com", "phone": "123", "rollNumber": "R1",
		"department": "CS", "address": "Addr", "bloodGroup": "O+", "validity": "2022-2025",
	}
}

func TestIndexShowsBrandedForm(t *testing.T) {
	h := newHarness(t)
	status, body := h.get("/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "<title>Tech Institute</title>")
	assert.Contains(t, body, "Student Registration")
	assert.Contains(t, body, `<option value="AB-"`)
	assert.NotContains(t, body, "Confirm Your Details")
}

func TestRegisterConfirmSubmit(t *testing.T) {
	h := newHarness(t)

	status, body := h.postMultipart("/register", completeForm(), "image", "me.jpg", []byte("jpegdata"))
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Confirm Your Details")
	assert.Empty(t, h.remote.created)

	status, body = h.postForm("/register/cancel", nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, body, "Confirm Your Details")
	assert.Contains(t, body, `value="Asha"`)

	h.postMultipart("/register", completeForm(), "", "", nil)
	_, body = h.postForm("/register/confirm", nil)
	assert.Contains(t, body, "Registration successful!")
	assert.NotContains(t, body, `value="Asha"`)
	require.Len(t, h.remote.created, 1)
	assert.Equal(t, []string{"R1"}, h.remote.created[0]["rollNumber"])
}

func TestRegisterWithoutPhotoStaysOnForm(t *testing.T) {
	h := newHarness(t)
	_, body := h.postMultipart("/register", completeForm(), "", "", nil)
	assert.NotContains(t, body, "Confirm Your Details")
	assert.Contains(t, body, `class="invalid">Photo`)
	assert.Empty(t, h.remote.created)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 40, 50))))
	return buf.Bytes()
}

func TestPhotoPreviewIsServedToOwnerOnly(t *testing.T) {
	h := newHarness(t)
	_, body := h.postMultipart("/register/photo", map[string]string{"name": "Asha"}, "image", "me.png", pngBytes(t))
	i := strings.Index(body, "/previews/")
	require.Positive(t, i)
	path := body[i : i+len("/previews/")+36]

	resp, err := h.client.Get(h.srv.URL + path)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))

	other := newHarness(t)
	status, _ := other.get(path)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUndecodablePhotoShowsPlaceholder(t *testing.T) {
	h := newHarness(t)
	_, body := h.postMultipart("/register/photo", map[string]string{"name": "Asha"}, "image", "x.html", []byte("<script>alert(1)</script>"))
	assert.NotContains(t, body, "/previews/")
	assert.Contains(t, body, `class="photo placeholder"`)
	assert.Contains(t, body, "x.html")
}

func TestLivePreviewCard(t *testing.T) {
	h := newHarness(t)
	h.get("/")
	status, _ := h.get("/preview/card")
	assert.Equal(t, http.StatusNoContent, status)

	status, body := h.get("/preview/card?name=Zed&bloodGroup=B%2B")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Zed")
	assert.Contains(t, body, `<dd class="blood">B&#43;</dd>`)
	assert.Contains(t, body, "Tech Institute")
}

func TestLoginAdminFlow(t *testing.T) {
	h := newHarness(t)
	h.remote.students = []apiclient.Student{{ID: "s1", Name: "Bo", RollNumber: "R9"}}

	_, body := h.postForm("/login", url.Values{"username": {"admin"}, "password": {"wrong"}})
	assert.Contains(t, body, "Invalid credentials")
	assert.Contains(t, body, "Admin Login")

	_, body = h.postForm("/login", url.Values{"username": {"admin"}, "password": {"secret"}})
	assert.Contains(t, body, "Registered Students (1)")
	assert.Equal(t, 1, h.remote.lists)

	h.remote.mu.Lock()
	h.remote.students = append(h.remote.students, apiclient.Student{ID: "s2", Name: "Cy"})
	h.remote.mu.Unlock()
	_, body = h.get("/")
	assert.Contains(t, body, "Registered Students (2)")
	assert.Equal(t, 2, h.remote.lists)
	h.remote.mu.Lock()
	h.remote.students = h.remote.students[:1]
	h.remote.mu.Unlock()

	resp, err := h.client.Get(h.srv.URL + "/admin/students/export")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxType, resp.Header.Get("Content-Type"))

	_, body = h.postForm("/admin/students/s1/delete", nil)
	assert.Contains(t, body, "Are you sure you want to delete this student?")
	assert.Empty(t, h.remote.deleted)

	listsBefore := h.remote.lists
	_, body = h.postForm("/admin/delete/confirm", nil)
	assert.Equal(t, []string{"s1"}, h.remote.deleted)
	assert.Contains(t, body, "Student deleted successfully")
	assert.Contains(t, body, "Registered Students (0)")
	assert.Contains(t, body, "No students registered yet.")
	assert.Equal(t, listsBefore+1, h.remote.lists)

	_, body = h.postForm("/logout", nil)
	assert.Contains(t, body, "Student Registration")
	status, _ := h.get("/admin/students/export")
	assert.Equal(t, http.StatusForbidden, status)
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)
	status, body := h.get("/healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"storage":true`)
}

func TestUploadTooLarge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend := storage.NewMemory(storage.Options{})
	registry := app.NewRegistry(apiclient.New("http://127.0.0.1:0", "", time.Second), backend, logger, app.Options{})
	r := gin.New()
	New(registry, backend, logger, Options{VisitorSigningKey: "k", VisitorTTL: time.Hour, MaxUploadBytes: 1024}).Register(r)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, _ := w.CreateFormFile("image", "big.jpg")
	_, _ = part.Write(bytes.Repeat([]byte("x"), 4096))
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/register/photo", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
