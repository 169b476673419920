package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/yungbote/scribe-backend/internal/modules/scriptgen"
	"github.com/yungbote/scribe-backend/internal/platform/imagesearch"
	"github.com/yungbote/scribe-backend/internal/platform/mcp"
	"github.com/yungbote/scribe-backend/internal/platform/openai"
	"github.com/yungbote/scribe-backend/internal/realtime"
)

// fakeAI answers the calls the services make. Methods not overridden panic
// through the nil embedded interface.
type fakeAI struct {
	openai.Client

	mu sync.Mutex

	text    string
	textErr error
	texts   []string

	jsonObj map[string]any
	jsonErr error

	image    openai.ImageGeneration
	imageErr error
	imageReq []openai.ImageRequest

	transcript    string
	transcribeErr error

	uploaded   []byte
	uploadName string
	uploadErr  error
	jobReq     openai.FineTuneJobRequest
	job        openai.FineTuneJob
	jobs       []openai.FineTuneJob
	modelErr   error
}

func (f *fakeAI) GenerateText(_ context.Context, _, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, user)
	return f.text, f.textErr
}

func (f *fakeAI) GenerateJSONObject(context.Context, string, string) (map[string]any, error) {
	return f.jsonObj, f.jsonErr
}

func (f *fakeAI) GenerateImage(_ context.Context, req openai.ImageRequest) (openai.ImageGeneration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imageReq = append(f.imageReq, req)
	return f.image, f.imageErr
}

func (f *fakeAI) Transcribe(_ context.Context, req openai.TranscriptionRequest) (string, error) {
	if _, err := io.ReadAll(req.Audio); err != nil {
		return "", err
	}
	return f.transcript, f.transcribeErr
}

func (f *fakeAI) UploadFile(_ context.Context, _ string, name string, r io.Reader) (openai.File, error) {
	if f.uploadErr != nil {
		return openai.File{}, f.uploadErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return openai.File{}, err
	}
	f.uploaded, f.uploadName = b, name
	return openai.File{ID: "file_1", Filename: name}, nil
}

func (f *fakeAI) CreateFineTuneJob(_ context.Context, req openai.FineTuneJobRequest) (openai.FineTuneJob, error) {
	f.jobReq = req
	return f.job, nil
}

func (f *fakeAI) ListFineTuneJobs(context.Context, int) ([]openai.FineTuneJob, error) {
	return f.jobs, nil
}

func (f *fakeAI) GetModel(_ context.Context, id string) (openai.Model, error) {
	if f.modelErr != nil {
		return openai.Model{}, f.modelErr
	}
	return openai.Model{ID: id}, nil
}

type fakePipeline struct {
	catalog  *scriptgen.Catalog
	research scriptgen.ResearchResult
	resErr   error
	plan     scriptgen.ProductionPlan
	planErr  error
	storeErr error
	files    []scriptgen.UploadedFile
}

func (p *fakePipeline) Prompts() *scriptgen.Catalog { return p.catalog }

func (p *fakePipeline) PrepareVectorStoreForFiles(_ context.Context, files []scriptgen.UploadedFile) (string, error) {
	p.files = files
	if p.storeErr != nil {
		return "", p.storeErr
	}
	return "vs_test", nil
}

func (p *fakePipeline) PerformResearch(_ context.Context, _, _, _ string, onEvent scriptgen.EmitFunc) (scriptgen.ResearchResult, error) {
	if onEvent != nil {
		onEvent(scriptgen.ToolCallEvent("web_search", nil))
	}
	return p.research, p.resErr
}

func (p *fakePipeline) PerformReasoningAndScaffolding(context.Context, string, string, *scriptgen.ResearchResult, string) (scriptgen.ProductionPlan, error) {
	return p.plan, p.planErr
}

func (p *fakePipeline) Render(_ context.Context, plan scriptgen.ProductionPlan, _ int) (string, scriptgen.Storyline) {
	return "rendered " + plan.Title, scriptgen.Storyline{}
}

type fakeYouTube struct {
	enabled   bool
	videos    []mcp.Video
	captioned []mcp.Video
	landscape json.RawMessage
	tools     []mcp.Tool
	captions  mcp.VideoCaptions
	seo       json.RawMessage
	seoErr    error
	err       error
}

func (y *fakeYouTube) Enabled() bool { return y.enabled }

func (y *fakeYouTube) SearchVideos(context.Context, string, int) ([]mcp.Video, error) {
	return y.videos, y.err
}

func (y *fakeYouTube) SearchCaptionedVideos(context.Context, string, int) ([]mcp.Video, error) {
	return y.captioned, nil
}

func (y *fakeYouTube) AnalyzeLandscape(context.Context, string, int) (json.RawMessage, error) {
	return y.landscape, nil
}

func (y *fakeYouTube) ListTools(context.Context) ([]mcp.Tool, error) {
	return y.tools, y.err
}

func (y *fakeYouTube) GetVideoWithCaptions(context.Context, string) (mcp.VideoCaptions, error) {
	return y.captions, y.err
}

func (y *fakeYouTube) ExtractSEO(context.Context, string) (json.RawMessage, error) {
	return y.seo, y.seoErr
}

func (y *fakeYouTube) AnalyzeComments(_ context.Context, _ string, maxComments int) (json.RawMessage, error) {
	return json.RawMessage(fmt.Sprintf(`{"analyzed":%d}`, maxComments)), nil
}

type fakeProvider struct {
	name    string
	results []imagesearch.Result
	err     error
	asked   int
}

func (p *fakeProvider) Name() string  { return p.name }
func (p *fakeProvider) Enabled() bool { return true }

func (p *fakeProvider) Search(_ context.Context, _ string, count int) ([]imagesearch.Result, error) {
	p.asked = count
	return p.results, p.err
}

type recordingEmitter struct {
	mu   sync.Mutex
	msgs []realtime.SSEMessage
}

func (e *recordingEmitter) Emit(_ context.Context, msg realtime.SSEMessage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.msgs = append(e.msgs, msg)
}

func (e *recordingEmitter) events() []realtime.SSEEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]realtime.SSEEvent, len(e.msgs))
	for i, m := range e.msgs {
		out[i] = m.Event
	}
	return out
}
