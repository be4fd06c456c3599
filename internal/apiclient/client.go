package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"idcard/internal/metrics"
)

// Client calls the remote ID-card API.
type Client struct {
	BaseURL   string
	AssetBase string
	HTTP      *http.Client
}

// New creates a client. A zero timeout leaves requests unbounded.
func New(baseURL, assetBase string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		AssetBase: strings.TrimRight(assetBase, "/"),
		HTTP:      &http.Client{Timeout: timeout},
	}
}

// AssetURL returns the public URL of an uploaded file, or "" when name is empty.
func (c *Client) AssetURL(kind, name string) string {
	if name == "" {
		return ""
	}
	segments := strings.Split(strings.TrimLeft(name, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return c.AssetBase + "/uploads/" + kind + "/" + strings.Join(segments, "/")
}

// Login exchanges admin credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/admin/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(req, "login", &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("login: response carried no token")
	}
	return out.Token, nil
}

// ListStudents returns every registration in backend order.
func (c *Client) ListStudents(ctx context.Context, token string) ([]Student, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/students", nil)
	if err != nil {
		return nil, err
	}
	setBearer(req, token)

	var out []Student
	if err := c.do(req, "list_students", &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Student{}
	}
	return out, nil
}

// CreateStudent submits a public registration.
func (c *Client) CreateStudent(ctx context.Context, reg Registration) error {
	body, contentType, err := encodeMultipart(func(w *multipart.Writer) error {
		fields := [][2]string{
			{"name", reg.Name},
			{"email", reg.Email},
			{"phone", reg.Phone},
			{"rollNumber", reg.RollNumber},
			{"department", reg.Department},
			{"address", reg.Address},
			{"bloodGroup", reg.BloodGroup},
			{"validity", reg.Validity},
		}
		for _, f := range fields {
			if err := w.WriteField(f[0], f[1]); err != nil {
				return err
			}
		}
		return writeFile(w, "image", reg.Image)
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/students", body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	return c.do(req, "create_student", nil)
}

// UploadIDCard attaches a printed-card scan to a student.
func (c *Client) UploadIDCard(ctx context.Context, token, studentID string, file File) error {
	body, contentType, err := encodeMultipart(func(w *multipart.Writer) error {
		return writeFile(w, "idcard", file)
	})
	if err != nil {
		return err
	}

	endpoint := c.BaseURL + "/students/" + url.PathEscape(studentID) + "/idcard"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	setBearer(req, token)
	return c.do(req, "upload_idcard", nil)
}

// DeleteStudent removes a registration.
func (c *Client) DeleteStudent(ctx context.Context, token, studentID string) error {
	endpoint := c.BaseURL + "/students/" + url.PathEscape(studentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	setBearer(req, token)
	return c.do(req, "delete_student", nil)
}

// CollegeInfo fetches the branding singleton.
func (c *Client) CollegeInfo(ctx context.Context) (*CollegeInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/college-info", nil)
	if err != nil {
		return nil, err
	}

	var out *CollegeInfo
	if err := c.do(req, "get_college", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateCollegeInfo replaces the branding singleton.
func (c *Client) UpdateCollegeInfo(ctx context.Context, token string, upd CollegeUpdate) error {
	body, contentType, err := encodeMultipart(func(w *multipart.Writer) error {
		if err := w.WriteField("name", upd.Name); err != nil {
			return err
		}
		if err := w.WriteField("address", upd.Address); err != nil {
			return err
		}
		if upd.Logo != nil {
			return writeFile(w, "logo", *upd.Logo)
		}
		return nil
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/college-info", body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	setBearer(req, token)
	return c.do(req, "update_college", nil)
}

// do sends req and decodes a 2xx JSON body into out when out is non-nil.
func (c *Client) do(req *http.Request, endpoint string, out any) error {
	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		metrics.ObserveAPI(endpoint, metrics.OutcomeTransport, time.Since(start))
		return &TransportError{Op: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ObserveAPI(endpoint, metrics.OutcomeTransport, time.Since(start))
		return &TransportError{Op: endpoint, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.ObserveAPI(endpoint, metrics.OutcomeRejected, time.Since(start))
		return &APIError{Status: resp.StatusCode, Message: messageFrom(body)}
	}
	metrics.ObserveAPI(endpoint, metrics.OutcomeOK, time.Since(start))

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response failed: %w", endpoint, err)
	}
	return nil
}

func messageFrom(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}

func setBearer(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
}

func encodeMultipart(build func(w *multipart.Writer) error) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := build(w); err != nil {
		return nil, "", fmt.Errorf("build multipart body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, field string, f File) error {
	if f.Body == nil {
		return fmt.Errorf("%s: no file", field)
	}
	part, err := w.CreatePart(fileHeader(field, f))
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f.Body)
	return err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func fileHeader(field string, f File) textproto.MIMEHeader {
	name := f.Name
	if name == "" {
		name = field
	}
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(name)))
	h.Set("Content-Type", contentType)
	return h
}
