package openai

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

type FineTuneJobRequest struct {
	TrainingFile string `json:"training_file"`
	Model        string `json:"model"`
	Suffix       string `json:"suffix,omitempty"`
}

type FineTuneJob struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	Model          string `json:"model"`
	FineTunedModel string `json:"fine_tuned_model,omitempty"`
	TrainingFile   string `json:"training_file"`
	CreatedAt      int64  `json:"created_at"`
	FinishedAt     int64  `json:"finished_at,omitempty"`
	Suffix         string `json:"user_provided_suffix,omitempty"`
	Error          *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type Model struct {
	ID      string `json:"id"`
	OwnedBy string `json:"owned_by"`
	Created int64  `json:"created"`
}

func (c *client) CreateFineTuneJob(ctx context.Context, req FineTuneJobRequest) (FineTuneJob, error) {
	var out FineTuneJob
	if strings.TrimSpace(req.TrainingFile) == "" {
		return out, errors.New("training file id required")
	}
	if strings.TrimSpace(req.Model) == "" {
		return out, errors.New("base model required")
	}
	err := c.doJSON(ctx, http.MethodPost, "/v1/fine_tuning/jobs", req, &out)
	return out, err
}

func (c *client) ListFineTuneJobs(ctx context.Context, limit int) ([]FineTuneJob, error) {
	if limit <= 0 {
		limit = 10
	}
	var out struct {
		Data []FineTuneJob `json:"data"`
	}
	if err := c.doGet(ctx, "/v1/fine_tuning/jobs?limit="+strconv.Itoa(limit), &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *client) GetModel(ctx context.Context, id string) (Model, error) {
	var out Model
	if strings.TrimSpace(id) == "" {
		return out, errors.New("model id required")
	}
	err := c.doGet(ctx, "/v1/models/"+url.PathEscape(id), &out)
	return out, err
}
