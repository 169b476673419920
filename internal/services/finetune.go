package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/scribe-backend/internal/data/repos"
	"github.com/yungbote/scribe-backend/internal/pkg/dbctx"
	"github.com/yungbote/scribe-backend/internal/platform/apierr"
	"github.com/yungbote/scribe-backend/internal/platform/logger"
	"github.com/yungbote/scribe-backend/internal/platform/openai"
)

const (
	DefaultFineTuneBase  = "gpt-4o-mini-2024-07-18"
	FineTuneSuffix       = "scribe-style"
	minTrainingExamples  = 10
	fineTuneJobListLimit = 10
	trainingFileName     = "training_data.jsonl"
	activeModelKey       = "active_model"
)

type CreateFineTuneInput struct {
	TrainingData []json.RawMessage `json:"training_data"`
	Model        string            `json:"model"`
}

type FineTuneJobView struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Model     string `json:"model"`
	CreatedAt int64  `json:"created_at"`
	Error     any    `json:"error"`
}

type FineTuneService interface {
	Create(ctx context.Context, in CreateFineTuneInput) (*FineTuneJobView, error)
	ListJobs(ctx context.Context) ([]FineTuneJobView, error)
	SetActiveModel(ctx context.Context, model string) (string, error)
	ActiveModel(ctx context.Context) (string, error)
}

type fineTuneService struct {
	log      *logger.Logger
	ai       openai.Client
	settings repos.AppSettingRepo
}

func NewFineTuneService(log *logger.Logger, ai openai.Client, settings repos.AppSettingRepo) FineTuneService {
	return &fineTuneService{
		log:      log.With("service", "FineTuneService"),
		ai:       ai,
		settings: settings,
	}
}

// padExamples repeats examples in order until there are at least
// minTrainingExamples of them.
func padExamples(examples []json.RawMessage) []json.RawMessage {
	if len(examples) == 0 || len(examples) >= minTrainingExamples {
		return examples
	}
	out := make([]json.RawMessage, 0, minTrainingExamples)
	for len(out) < minTrainingExamples {
		out = append(out, examples[len(out)%len(examples)])
	}
	return out
}

// buildJSONL writes one compacted example per line.
func buildJSONL(examples []json.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	for i, ex := range examples {
		if i > 0 {
			buf.WriteByte('\n')
		}
		if err := json.Compact(&buf, ex); err != nil {
			return nil, fmt.Errorf("training example %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

func (s *fineTuneService) Create(ctx context.Context, in CreateFineTuneInput) (*FineTuneJobView, error) {
	examples := make([]json.RawMessage, 0, len(in.TrainingData))
	for _, ex := range in.TrainingData {
		if present(ex) {
			examples = append(examples, ex)
		}
	}
	if len(examples) == 0 {
		return nil, apierr.BadRequest("missing_training_data", "No training data provided.")
	}
	examples = padExamples(examples)
	body, err := buildJSONL(examples)
	if err != nil {
		return nil, apierr.BadRequest("invalid_training_data", err.Error())
	}

	file, err := s.ai.UploadFile(ctx, "fine-tune", trainingFileName, bytes.NewReader(body))
	if err != nil {
		return nil, fineTuneFailed(err)
	}
	s.log.Info("training file uploaded", "file_id", file.ID, "examples", len(examples))

	job, err := s.ai.CreateFineTuneJob(ctx, openai.FineTuneJobRequest{
		TrainingFile: file.ID,
		Model:        firstNonBlank(in.Model, DefaultFineTuneBase),
		Suffix:       FineTuneSuffix,
	})
	if err != nil {
		return nil, fineTuneFailed(err)
	}
	s.log.Info("fine-tuning job created", "job_id", job.ID, "status", job.Status)
	return &FineTuneJobView{ID: job.ID, Status: job.Status, Model: job.Model, CreatedAt: job.CreatedAt}, nil
}

func fineTuneFailed(err error) error {
	return apierr.Internal("fine_tune_failed", fmt.Errorf("Failed to create fine-tuning job: %w", err))
}

func isScribeJob(j openai.FineTuneJob) bool {
	return j.Suffix == FineTuneSuffix || strings.Contains(j.FineTunedModel, ":"+FineTuneSuffix+":")
}

func (s *fineTuneService) ListJobs(ctx context.Context) ([]FineTuneJobView, error) {
	jobs, err := s.ai.ListFineTuneJobs(ctx, fineTuneJobListLimit)
	if err != nil {
		s.log.Warn("list fine-tuning jobs failed", "error", err)
		return nil, apierr.Internal("list_jobs_failed", errors.New("Failed to fetch fine-tuning jobs"))
	}
	out := make([]FineTuneJobView, 0, len(jobs))
	for _, j := range jobs {
		if !isScribeJob(j) {
			continue
		}
		view := FineTuneJobView{
			ID:        j.ID,
			Status:    j.Status,
			Model:     firstNonBlank(j.FineTunedModel, j.Model),
			CreatedAt: j.CreatedAt,
		}
		if j.Error != nil && (j.Error.Code != "" || j.Error.Message != "") {
			view.Error = j.Error
		}
		out = append(out, view)
	}
	return out, nil
}

func (s *fineTuneService) SetActiveModel(ctx context.Context, model string) (string, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return "", apierr.BadRequest("missing_model", "Model name is required")
	}
	if _, err := s.ai.GetModel(ctx, model); err != nil {
		s.log.Warn("model validation failed", "model", model, "error", err)
		return "", apierr.BadRequest("invalid_model", "Invalid or inaccessible model")
	}
	if err := s.settings.Set(dbctx.Context{Ctx: ctx}, activeModelKey, model); err != nil {
		return "", apierr.Internal("set_model_failed", errors.New("Failed to set model"))
	}
	return model, nil
}

// ActiveModel returns the stored model, falling back to the fine-tune base
// model when none was ever set.
func (s *fineTuneService) ActiveModel(ctx context.Context) (string, error) {
	v, ok, err := s.settings.Get(dbctx.Context{Ctx: ctx}, activeModelKey)
	if err != nil {
		return "", err
	}
	if !ok || strings.TrimSpace(v) == "" {
		return DefaultFineTuneBase, nil
	}
	return v, nil
}
