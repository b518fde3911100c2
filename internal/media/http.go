package media

import (
	"errors"
	"net/http"

	"github.com/abduss/mediadrop/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	multipartMemory     = 32 << 20
	validationFailedMsg = "The given data was invalid."
)

// RegisterRoutes mounts media endpoints under the provided, already authenticated, group.
// maxRequestBytes caps the raw request body.
func RegisterRoutes(group *gin.RouterGroup, service *Service, maxRequestBytes int64) {
	handler := &httpHandler{service: service, maxRequestBytes: maxRequestBytes}
	group.POST("/media", handler.store)
	group.GET("/media/:id", handler.show)
}

type httpHandler struct {
	service         *Service
	maxRequestBytes int64
}

func (h *httpHandler) store(c *gin.Context) {
	principal, ok := auth.RequireUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxRequestBytes)

	sub, cleanup, err := h.parseSubmission(c)
	defer cleanup()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	descriptor, err := h.service.Ingest(c.Request.Context(), principal, sub)
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": validationFailedMsg, "errors": verr.Fields})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store media"})
		}
		return
	}

	c.JSON(http.StatusCreated, descriptor)
}

func (h *httpHandler) show(c *gin.Context) {
	if _, ok := auth.RequireUser(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid media id"})
		return
	}

	descriptor, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrMediaNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "media not found"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load media"})
		}
		return
	}

	c.JSON(http.StatusOK, descriptor)
}

// parseSubmission reads the body into a Submission. The returned cleanup must
// always be called; it closes the uploaded file and removes spooled parts.
func (h *httpHandler) parseSubmission(c *gin.Context) (Submission, func(), error) {
	noop := func() {}

	switch c.ContentType() {
	case gin.MIMEMultipartPOSTForm:
		return parseMultipart(c)
	case gin.MIMEJSON:
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			if isTooLarge(err) {
				return Submission{FileErr: ErrUploadTooLarge}, noop, nil
			}
			return Submission{}, noop, err
		}
		return submissionFromJSON(body), noop, nil
	default:
		if err := c.Request.ParseForm(); err != nil {
			if isTooLarge(err) {
				return Submission{FileErr: ErrUploadTooLarge}, noop, nil
			}
			return Submission{}, noop, err
		}
		sub := Submission{
			Title:       formValue(c.Request.PostForm["title"]),
			Description: formValue(c.Request.PostForm["description"]),
		}
		if _, ok := c.Request.PostForm["file"]; ok {
			sub.FileErr = ErrNotAFile
		}
		return sub, noop, nil
	}
}

func parseMultipart(c *gin.Context) (Submission, func(), error) {
	noop := func() {}
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		if isTooLarge(err) {
			return Submission{FileErr: ErrUploadTooLarge}, noop, nil
		}
		return Submission{}, noop, err
	}
	form := c.Request.MultipartForm
	cleanup := func() { _ = form.RemoveAll() }

	sub := Submission{
		Title:       formValue(form.Value["title"]),
		Description: formValue(form.Value["description"]),
	}

	headers := form.File["file"]
	switch {
	case len(headers) > 0:
		f, err := headers[0].Open()
		if err != nil {
			sub.FileErr = err
			return sub, cleanup, nil
		}
		sub.File = &FileInput{
			Filename:     headers[0].Filename,
			DeclaredType: headers[0].Header.Get("Content-Type"),
			SizeBytes:    headers[0].Size,
			Content:      f,
		}
		return sub, func() {
			_ = f.Close()
			cleanup()
		}, nil
	case len(form.Value["file"]) > 0:
		sub.FileErr = ErrNotAFile
	}
	return sub, cleanup, nil
}

// submissionFromJSON maps a JSON object. Null text fields count as absent;
// any file value is text, never an attachment.
func submissionFromJSON(body map[string]any) Submission {
	var sub Submission
	sub.Title, sub.TitleErr = jsonString(body, "title")
	sub.Description, sub.DescriptionErr = jsonString(body, "description")
	if v, ok := body["file"]; ok && v != nil {
		sub.FileErr = ErrNotAFile
	}
	return sub
}

func jsonString(body map[string]any, key string) (*string, error) {
	switch v := body[key].(type) {
	case nil:
		return nil, nil
	case string:
		return &v, nil
	default:
		return nil, ErrNotAString
	}
}

func formValue(values []string) *string {
	if len(values) == 0 {
		return nil
	}
	return &values[0]
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
