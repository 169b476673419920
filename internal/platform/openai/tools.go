package openai

import (
	"context"
	"strings"

	"github.com/yungbote/scribe-backend/internal/platform/promptstyle"
)

// ToolRequest describes one agent turn with hosted tools.
type ToolRequest struct {
	// Model overrides the client model when set.
	Model        string
	Instructions string
	Input        string
	WebSearch    bool
	// FileSearch is enabled when at least one vector store id is given.
	VectorStoreIDs   []string
	MaxFileResults   int
	JSONInstructions bool
}

// ToolCall is one hosted tool invocation observed in the response output.
type ToolCall struct {
	Name   string `json:"tool_name"`
	Input  string `json:"tool_input"`
	Status string `json:"status"`
	Output string `json:"tool_output,omitempty"`
}

type URLCitation struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type ToolResponse struct {
	Text      string
	Calls     []ToolCall
	Citations []URLCitation
}

func (c *client) RunWithTools(ctx context.Context, tr ToolRequest) (ToolResponse, error) {
	var out ToolResponse
	model := strings.TrimSpace(tr.Model)
	if model == "" {
		model = c.model
	}
	mode := "text"
	if tr.JSONInstructions {
		mode = "json"
	}
	req := responsesRequest{
		Model:        model,
		Instructions: promptstyle.ApplySystem(tr.Instructions, mode),
		Input:        []inputMessage{{Role: "user", Content: tr.Input}},
		Temperature:  c.temperatureFor(model),
	}
	if tr.WebSearch {
		req.Tools = append(req.Tools, map[string]any{"type": "web_search"})
	}
	if len(tr.VectorStoreIDs) > 0 {
		tool := map[string]any{
			"type":             "file_search",
			"vector_store_ids": tr.VectorStoreIDs,
		}
		if tr.MaxFileResults > 0 {
			tool["max_num_results"] = tr.MaxFileResults
		}
		req.Tools = append(req.Tools, tool)
		req.Include = append(req.Include, "file_search_call.results")
	}

	resp, err := c.postResponses(ctx, &req)
	if err != nil {
		return out, err
	}
	out.Calls = collectToolCalls(resp)
	out.Citations = collectCitations(resp)
	text, err := extractOutputText(resp)
	if err != nil {
		return out, err
	}
	out.Text = text
	return out, nil
}

func collectToolCalls(resp responsesResponse) []ToolCall {
	var calls []ToolCall
	for _, item := range resp.Output {
		switch item.Type {
		case "web_search_call":
			call := ToolCall{Name: "web_search", Status: item.Status}
			if item.Action != nil {
				call.Input = item.Action.Query
			}
			calls = append(calls, call)
		case "file_search_call":
			call := ToolCall{Name: "file_search", Status: item.Status, Input: strings.Join(item.Queries, "; ")}
			if len(item.Results) > 0 {
				names := make([]string, 0, len(item.Results))
				for _, r := range item.Results {
					names = append(names, r.Filename)
				}
				call.Output = strings.Join(names, ", ")
			}
			calls = append(calls, call)
		}
	}
	return calls
}

func collectCitations(resp responsesResponse) []URLCitation {
	seen := map[string]bool{}
	var out []URLCitation
	for _, item := range resp.Output {
		for _, content := range item.Content {
			for _, a := range content.Annotations {
				if a.Type != "url_citation" || a.URL == "" || seen[a.URL] {
					continue
				}
				seen[a.URL] = true
				out = append(out, URLCitation{Title: a.Title, URL: a.URL})
			}
		}
	}
	return out
}
