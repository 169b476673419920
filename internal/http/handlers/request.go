package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/scribe-backend/internal/http/response"
	"github.com/yungbote/scribe-backend/internal/services"
)

var errInvalidJSON = errors.New("Invalid JSON in request body")

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_json", errInvalidJSON)
		return false
	}
	return true
}

// formUpload reads a multipart file field. A missing field, or a body that is
// not multipart at all, yields nil so services can report it their own way.
func formUpload(c *gin.Context, field string) (*services.Upload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	data, err := readPart(fh)
	if err != nil {
		return nil, err
	}
	return &services.Upload{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// callRecorder logs one AI call per request. A nil CallLogService disables it.
type callRecorder struct {
	calls services.CallLogService
}

func (r callRecorder) record(c *gin.Context, start time.Time, req, resp any, err error) {
	if r.calls == nil {
		return
	}
	r.calls.Record(c.Request.Context(), c.FullPath(), req, resp, err, time.Since(start))
}
