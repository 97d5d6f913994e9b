// internal/referee/referee.go
package referee

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Fixed replies returned in place of a model answer.
const (
	Greeting         = "Hello! I am your Trix Referee. Ask me about rules, strategy, or scoring disputes. I can also explain the script provided!"
	MissingKeyReply  = "Error: API Key is missing. Please check your configuration."
	UnavailableReply = "The Referee is currently unavailable (API Error)."
	EmptyReply       = "I couldn't generate a response. Please try again."
)

const (
	DefaultModel    = "gemini-2.5-flash"
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"
)

// SystemPrompt sets the referee persona and the rules context for every query.
const SystemPrompt = `
You are the "Trix Master Referee", an expert in the Middle Eastern card game Trix (Trexs).
Explain rules, settle disputes, and clarify scoring using standard "Complex Trix" (Kingdoms) rules.

Rules context:
1. 4 players, 52 cards.
2. 5 contracts: King of Hearts (-75), Queens (-25 each), Diamonds (-10 each), Latshat/Collection (-15 each), Trix (positive points: 200, 150, 100, 50).
3. In the Trix contract play starts from the 7 or the Jack depending on the variation; assume the 7 unless the user says otherwise.
4. If asked about strategy, give tips.
5. Be concise and friendly. Arabic terms (Latsh, Sheikh al Kobba) are welcome where helpful.
6. The user has an app with a Scoreboard, Rules, and Script section.

If the user asks about the script in their app, explain it is a roleplay example of a game starting.
`

// Referee answers free-text rules questions through the Gemini generateContent API.
type Referee struct {
	APIKey     string
	Model      string
	Endpoint   string
	HTTPClient *http.Client
	Logger     *logrus.Logger
}

// New returns a Referee with default model, endpoint and a 30s HTTP timeout.
func New(apiKey string, logger *logrus.Logger) *Referee {
	return &Referee{
		APIKey:     apiKey,
		Model:      DefaultModel,
		Endpoint:   DefaultEndpoint,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Logger:     logger,
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	SystemInstruction content   `json:"systemInstruction"`
	Contents          []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Ask sends one user message and returns the referee's reply. It never fails:
// configuration and transport problems come back as one of the fixed replies.
func (r *Referee) Ask(ctx context.Context, message string) string {
	if r.APIKey == "" {
		return MissingKeyReply
	}

	reply, err := r.generate(ctx, message)
	if err != nil {
		if r.Logger != nil {
			r.Logger.WithError(err).Warn("referee request failed")
		}
		return UnavailableReply
	}
	if strings.TrimSpace(reply) == "" {
		return EmptyReply
	}
	return reply
}

func (r *Referee) generate(ctx context.Context, message string) (string, error) {
	body, err := json.Marshal(generateRequest{
		SystemInstruction: content{Parts: []part{{Text: SystemPrompt}}},
		Contents:          []content{{Role: "user", Parts: []part{{Text: message}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(r.Endpoint, "/"), r.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", r.APIKey)

	client := r.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("generateContent: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("generateContent: status %d: %s", resp.StatusCode, snippet)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(out.Candidates) == 0 {
		return "", nil
	}
	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}
