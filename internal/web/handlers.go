package web

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"idcard/internal/apiclient"
	"idcard/internal/app"
	"idcard/internal/photo"
	"idcard/internal/registration"
)

const xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// view is the root template's data.
type view struct {
	app.Page
	// RefreshAfter reloads the page after this many seconds; zero disables.
	RefreshAfter int
}

func (s *Server) index(c *gin.Context) {
	page := s.workspace(c).Page(c.Request.Context())
	v := view{Page: page}
	if page.Admin != nil && page.Admin.Settings.Open && page.Admin.Settings.Message != "" {
		v.RefreshAfter = max(1, int((s.opts.SettingsCloseDelay+time.Second-1)/time.Second))
	}
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, "index.html", v)
}

func (s *Server) previewCard(c *gin.Context) {
	var fields registration.Fields
	if err := c.ShouldBindQuery(&fields); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	v, ok := s.workspace(c).DraftCard(fields)
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.HTML(http.StatusOK, "card.html", v)
}

func (s *Server) previewImage(c *gin.Context) {
	p, ok := s.workspace(c).Preview(c.Param("id"))
	if !ok || len(p.Preview) == 0 {
		c.Status(http.StatusNotFound)
		return
	}
	c.Header("Cache-Control", "private, max-age=3600")
	c.Data(http.StatusOK, photo.PreviewType, p.Preview)
}

func (s *Server) register(c *gin.Context) {
	ctx := c.Request.Context()
	ws := s.workspace(c)

	var fields registration.Fields
	if err := c.ShouldBind(&fields); err != nil {
		s.uploadRejected(c, err)
		return
	}
	if cmd, ok, err := s.photoFrom(c, "image"); err != nil {
		s.uploadRejected(c, err)
		return
	} else if ok {
		_ = ws.Dispatch(ctx, cmd)
	}
	_ = ws.Dispatch(ctx, app.SubmitRegistration{Fields: fields})
	c.Redirect(http.StatusSeeOther, "/")
}

// selectPhoto keeps the typed fields and swaps the draft photo.
func (s *Server) selectPhoto(c *gin.Context) {
	ctx := c.Request.Context()
	ws := s.workspace(c)

	var fields registration.Fields
	if err := c.ShouldBind(&fields); err != nil {
		s.uploadRejected(c, err)
		return
	}
	_ = ws.Dispatch(ctx, app.EditDraft{Fields: fields})
	cmd, ok, err := s.photoFrom(c, "image")
	if err != nil {
		s.uploadRejected(c, err)
		return
	}
	if ok {
		_ = ws.Dispatch(ctx, cmd)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) photoFrom(c *gin.Context, field string) (app.SelectPhoto, bool, error) {
	f, err := s.fileFrom(c, field)
	if err != nil || f == nil {
		return app.SelectPhoto{}, false, err
	}
	data, err := io.ReadAll(f.Body)
	if err != nil {
		return app.SelectPhoto{}, false, err
	}
	return app.SelectPhoto{Filename: f.Name, ContentType: f.ContentType, Data: data}, true, nil
}

func (s *Server) uploadIDCard(c *gin.Context) {
	file, err := s.fileFrom(c, "idcard")
	if err != nil {
		s.uploadRejected(c, err)
		return
	}
	_ = s.workspace(c).Dispatch(c.Request.Context(), app.UploadIDCard{StudentID: c.Param("id"), File: file})
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) saveSettings(c *gin.Context) {
	logo, err := s.fileFrom(c, "logo")
	if err != nil {
		s.uploadRejected(c, err)
		return
	}
	_ = s.workspace(c).Dispatch(c.Request.Context(), app.SaveSettings{
		Name:    c.PostForm("name"),
		Address: c.PostForm("address"),
		Logo:    logo,
	})
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) exportRoster(c *gin.Context) {
	var buf bytes.Buffer
	err := s.workspace(c).ExportRoster(c.Request.Context(), &buf)
	switch {
	case errors.Is(err, app.ErrNotAdmin):
		c.Status(http.StatusForbidden)
		return
	case err != nil:
		s.logger.ErrorContext(c.Request.Context(), "roster export failed", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="students.xlsx"`)
	c.Data(http.StatusOK, xlsxType, buf.Bytes())
}

// fileFrom reads an optional upload. No file, or an empty one, yields nil.
func (s *Server) fileFrom(c *gin.Context, field string) (*apiclient.File, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if fh.Size == 0 {
		return nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &apiclient.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        bytes.NewReader(data),
	}, nil
}

func (s *Server) uploadRejected(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.String(http.StatusRequestEntityTooLarge, "upload too large")
		return
	}
	s.logger.WarnContext(c.Request.Context(), "upload read failed", "error", err)
	c.String(http.StatusBadRequest, "upload could not be read")
}
