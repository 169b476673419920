package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

type File struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Bytes    int64  `json:"bytes"`
	Purpose  string `json:"purpose"`
	Status   string `json:"status,omitempty"`
}

type VectorStore struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	FileCounts struct {
		InProgress int `json:"in_progress"`
		Completed  int `json:"completed"`
		Failed     int `json:"failed"`
		Total      int `json:"total"`
	} `json:"file_counts"`
}

// multipartBody builds a form with the given fields and a single file part.
func multipartBody(fields map[string]string, fileField, fileName string, r io.Reader) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	part, err := w.CreateFormFile(fileField, fileName)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func (c *client) UploadFile(ctx context.Context, purpose string, fileName string, r io.Reader) (File, error) {
	var out File
	if r == nil {
		return out, errors.New("file reader required")
	}
	purpose = strings.TrimSpace(purpose)
	if purpose == "" {
		return out, errors.New("file purpose required")
	}
	payload, contentType, err := multipartBody(map[string]string{"purpose": purpose}, "file", fileName, r)
	if err != nil {
		return out, fmt.Errorf("build upload form: %w", err)
	}
	raw, err := c.doMultipart(ctx, "/v1/files", payload, contentType)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode file upload: %w", err)
	}
	if out.ID == "" {
		return out, errors.New("file upload returned no id")
	}
	return out, nil
}

func (c *client) CreateVectorStore(ctx context.Context, name string, fileIDs []string) (VectorStore, error) {
	var out VectorStore
	body := map[string]any{"name": name, "file_ids": fileIDs}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/vector_stores", body, &out); err != nil {
		return out, err
	}
	if out.ID == "" {
		return out, errors.New("vector store create returned no id")
	}
	return out, nil
}

func (c *client) GetVectorStore(ctx context.Context, id string) (VectorStore, error) {
	var out VectorStore
	if strings.TrimSpace(id) == "" {
		return out, errors.New("vector store id required")
	}
	err := c.doGet(ctx, "/v1/vector_stores/"+url.PathEscape(id), &out)
	return out, err
}
