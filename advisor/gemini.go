package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModelName is the Gemini model used for proposals.
const DefaultModelName = "gemini-2.0-flash"

// Gemini implements Advisor against the Gemini API.
type Gemini struct {
	APIKey string
	Model  string
}

func NewGemini(apiKey string) *Gemini {
	return &Gemini{APIKey: apiKey, Model: DefaultModelName}
}

func (g *Gemini) ProposeAllocations(ctx context.Context, in AllocationInput) (*AllocationProposal, error) {
	prompt :=
		"You are a personal budgeting assistant.\n\n" +
			"Task:\n" +
			"- Given the user's disposable income and per-category spending below,\n" +
			"  propose a monthly base allocation for every category.\n" +
			"- The allocations must sum to at most the disposable income.\n" +
			"- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n\n" +
			"Output object fields:\n" +
			"- \"allocations\": object mapping category name to number\n" +
			"- \"advice\": string, one or two sentences\n" +
			"- \"score\": number between 0 and 1, your confidence\n\n" +
			"Return ONLY valid raw JSON.\n" +
			"Do NOT wrap the response in code fences.\n"

	var proposal AllocationProposal
	if err := g.generate(ctx, prompt, in, &proposal); err != nil {
		return nil, fmt.Errorf("proposeAllocations: %w", err)
	}
	if proposal.Allocations == nil {
		return nil, fmt.Errorf("proposeAllocations: model returned no allocations")
	}
	return &proposal, nil
}

func (g *Gemini) ProposeEmergencyPlan(ctx context.Context, in EmergencyInput) (*EmergencyPlan, error) {
	prompt :=
		"You are a personal budgeting assistant.\n\n" +
			"Task:\n" +
			"- Given the user's monthly income, fixed bills and current emergency\n" +
			"  fund balance below, propose an emergency fund plan.\n" +
			"- Aim for three to six months of fixed bills as the target.\n" +
			"- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n\n" +
			"Output object fields:\n" +
			"- \"target_amount\": number\n" +
			"- \"deadline\": string, ISO format \"YYYY-MM-DD\"\n" +
			"- \"monthly_contribution\": number\n" +
			"- \"reasoning\": string, one or two sentences\n\n" +
			"Return ONLY valid raw JSON.\n" +
			"Do NOT wrap the response in code fences.\n"

	var plan EmergencyPlan
	if err := g.generate(ctx, prompt, in, &plan); err != nil {
		return nil, fmt.Errorf("proposeEmergencyPlan: %w", err)
	}
	return &plan, nil
}

// generate sends the prompt plus the JSON-encoded input to the model and
// decodes its strict-JSON reply into out.
func (g *Gemini) generate(ctx context.Context, prompt string, input any, out any) error {
	payload, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("encode input: %w", err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      g.APIKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return fmt.Errorf("create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
				{Text: "Input:\n" + string(payload)},
			},
		},
	}

	model := g.Model
	if model == "" {
		model = DefaultModelName
	}
	resp, err := client.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return fmt.Errorf("generate content: %w", err)
	}

	raw := resp.Text()
	if raw == "" {
		return fmt.Errorf("empty response from model")
	}

	clean := CleanModelJSON(raw)
	if err := json.Unmarshal([]byte(clean), out); err != nil {
		return fmt.Errorf("unmarshal JSON: %w\nraw response: %s", err, raw)
	}
	return nil
}

// CleanModelJSON strips Markdown fences and surrounding prose if the model
// ignored the strict-JSON instructions.
func CleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	// Keep only the outermost JSON value.
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	end := strings.LastIndexAny(s, "}]")
	if end < start {
		return s
	}
	return s[start : end+1]
}
