package server

// HTTPError is the generic error envelope returned by the server.
type HTTPError struct {
	Error string `json:"error"`
}

// AuthSignupRequest represents the signup payload.
type AuthSignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthLoginRequest represents the login payload.
type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries a bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// IDResponse is a generic id response wrapper.
type IDResponse struct {
	ID string `json:"id"`
}

// ScanRequest represents a visibility scan payload.
type ScanRequest struct {
	URL               string   `json:"url"`
	Industry          string   `json:"industry,omitempty"`
	VisibilityQueries []string `json:"visibilityQueries,omitempty"`
}

// ModelCell is one model's outcome for one prompt.
type ModelCell struct {
	Found   bool   `json:"found"`
	Snippet string `json:"snippet,omitempty"`
	Error   bool   `json:"error"`
}

// PromptRow groups the three model cells for a single prompt.
type PromptRow struct {
	Prompt     string    `json:"prompt"`
	ChatGPT    ModelCell `json:"chatgpt"`
	Gemini     ModelCell `json:"gemini"`
	Perplexity ModelCell `json:"perplexity"`
}

// TrendEntry is one historical scan's score projection.
type TrendEntry struct {
	Score int    `json:"score"`
	Total int    `json:"total"`
	Date  string `json:"date"`
}

// ScanResponse is the full scan payload returned on both the cached and the
// fresh path.
type ScanResponse struct {
	Cached       bool         `json:"cached"`
	ScannedAt    string       `json:"scannedAt"`
	TotalFound   int          `json:"totalFound"`
	TotalQueries int          `json:"totalQueries"`
	Results      []PromptRow  `json:"results"`
	Trend        []TrendEntry `json:"trend"`
}

// HistoryResponse carries the trend series without scan rows.
type HistoryResponse struct {
	URL   string       `json:"url"`
	Trend []TrendEntry `json:"trend"`
}

// CreateTrackedURLRequest registers a URL for scheduled rescans.
type CreateTrackedURLRequest struct {
	URL          string `json:"url"`
	Industry     string `json:"industry,omitempty"`
	ScheduleCron string `json:"schedule_cron,omitempty"`
}

// TrackedURLResponse is one tracked URL entry.
type TrackedURLResponse struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	Industry     string `json:"industry,omitempty"`
	ScheduleCron string `json:"schedule_cron"`
	CreatedAt    string `json:"created_at"`
}
