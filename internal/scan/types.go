package scan

import "time"

// Model identifies one of the fixed model/provider pairings. The set is
// closed: it is used as a map key and as a column value, never extended at
// runtime.
type Model string

const (
	ModelChatGPT    Model = "chatgpt"
	ModelGemini     Model = "gemini"
	ModelPerplexity Model = "perplexity"
)

// AllModels returns the closed model set in canonical order. The order is
// load-bearing: result cells are emitted prompts-outer, models-inner in this
// order so output is deterministic regardless of completion order.
func AllModels() []Model {
	return []Model{ModelChatGPT, ModelGemini, ModelPerplexity}
}

// PromptCount is the fixed number of prompts per scan, regardless of whether
// they come from the industry table or the caller.
const PromptCount = 5

// Query is the input to one visibility scan.
type Query struct {
	TargetURL     string
	Industry      string
	CustomPrompts []string // exactly PromptCount entries when present
}

// VisibilityResult is one cell of the prompts x models matrix.
// Invariants: Found implies Snippet != "" and !Error; Error implies !Found
// and Snippet == "".
type VisibilityResult struct {
	Model   Model  `json:"model"`
	Prompt  string `json:"prompt"`
	Found   bool   `json:"found"`
	Snippet string `json:"snippet,omitempty"`
	Error   bool   `json:"error"`
}

// Output is the aggregate of one scan execution.
// TotalFound == count(Results where Found); TotalQueries == len(Results).
type Output struct {
	ID            string             `json:"id"`
	NormalizedURL string             `json:"normalized_url"`
	Industry      string             `json:"industry,omitempty"`
	TotalFound    int                `json:"total_found"`
	TotalQueries  int                `json:"total_queries"`
	Results       []VisibilityResult `json:"results"`
	ScannedAt     time.Time          `json:"scanned_at"`
}

// TrendPoint is a read projection over persisted scans, ordered oldest first.
type TrendPoint struct {
	Score int       `json:"score"`
	Total int       `json:"total"`
	Date  time.Time `json:"date"`
}
