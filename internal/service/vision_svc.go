package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/model"
)

const visionCallTimeout = 30 * time.Second

// visionPrompt instructs the model to answer with strict JSON only.
const visionPrompt = `You are analyzing a YouTube video thumbnail and metadata to decide whether the channel is a "dark" (faceless) channel: narration over imagery, stock footage, compilations, AI voiceover, no on-camera presenter.

Title: %s
Channel: %s
Description: %s

Respond with ONLY a JSON object, no prose, with exactly these fields:
{"isDark": boolean, "confidence": 0-100, "hasFace": boolean, "faceSize": "none"|"small"|"medium"|"large", "contentType": string, "reason": string, "indicators": [string]}`

// VisionService is the adapter to the external vision-capable model. It is
// the only classification stage that performs network I/O.
type VisionService struct {
	client  *http.Client
	url     string
	apiKey  string
	model   string
	enabled bool
}

// NewVisionService creates the adapter. An empty API key leaves the stage
// disabled: invoking it fails fast with ErrVisionDisabled rather than
// producing a fake verdict.
func NewVisionService(url, apiKey, modelName string) *VisionService {
	return &VisionService{
		client:  &http.Client{Timeout: visionCallTimeout},
		url:     url,
		apiKey:  apiKey,
		model:   modelName,
		enabled: apiKey != "",
	}
}

// Enabled reports whether credentials are configured.
func (s *VisionService) Enabled() bool {
	return s.enabled
}

// chat-completions request/response shapes (OpenAI-compatible endpoint).
type visionChatRequest struct {
	Model     string              `json:"model"`
	Messages  []visionChatMessage `json:"messages"`
	MaxTokens int                 `json:"max_tokens"`
}

type visionChatMessage struct {
	Role    string              `json:"role"`
	Content []visionChatContent `json:"content"`
}

type visionChatContent struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *visionImageURL `json:"image_url,omitempty"`
}

type visionImageURL struct {
	URL string `json:"url"`
}

type visionChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// visionVerdict is the structured contract the model must honor. Pointer
// fields distinguish "absent" from zero values so omissions are detected.
type visionVerdict struct {
	IsDark      *bool    `json:"isDark"`
	Confidence  *int     `json:"confidence"`
	HasFace     *bool    `json:"hasFace"`
	FaceSize    string   `json:"faceSize"`
	ContentType string   `json:"contentType"`
	Reason      string   `json:"reason"`
	Indicators  []string `json:"indicators"`
}

// Classify sends the thumbnail and metadata to the vision model and parses
// its structured verdict. Transport failures map to ErrUpstreamUnavailable;
// unparsable or incomplete output is a MalformedResponseError — no fallback
// guess is ever synthesized.
func (s *VisionService) Classify(ctx context.Context, req model.ClassificationRequest) (model.ClassificationResult, error) {
	if !s.enabled {
		return model.ClassificationResult{}, ErrVisionDisabled
	}

	prompt := fmt.Sprintf(visionPrompt, req.Title, req.ChannelName, req.Description)
	payload := visionChatRequest{
		Model:     s.model,
		MaxTokens: 300,
		Messages: []visionChatMessage{{
			Role: "user",
			Content: []visionChatContent{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &visionImageURL{URL: req.ThumbnailRef}},
			},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return model.ClassificationResult{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return model.ClassificationResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return model.ClassificationResult{}, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	// 429 and 5xx are recoverable upstream conditions; 4xx other than 429
	// means our request contract is broken.
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return model.ClassificationResult{}, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return model.ClassificationResult{}, &MalformedResponseError{
			Reason: fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}

	var chat visionChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return model.ClassificationResult{}, &MalformedResponseError{Reason: "response body is not valid JSON"}
	}
	if len(chat.Choices) == 0 {
		return model.ClassificationResult{}, &MalformedResponseError{Reason: "response contains no choices"}
	}

	return parseVerdict(chat.Choices[0].Message.Content)
}

// parseVerdict extracts the strict JSON verdict from the model's message
// content, tolerating surrounding prose or markdown fences but nothing
// looser than that.
func parseVerdict(content string) (model.ClassificationResult, error) {
	raw := extractJSONObject(content)
	if raw == "" {
		return model.ClassificationResult{}, &MalformedResponseError{Reason: "no JSON object in model output"}
	}

	var v visionVerdict
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return model.ClassificationResult{}, &MalformedResponseError{Reason: "verdict is not valid JSON"}
	}
	if v.IsDark == nil {
		return model.ClassificationResult{}, &MalformedResponseError{Reason: "verdict missing isDark"}
	}
	if v.Confidence == nil {
		return model.ClassificationResult{}, &MalformedResponseError{Reason: "verdict missing confidence"}
	}

	confidence := *v.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}

	hasFace := false
	if v.HasFace != nil {
		hasFace = *v.HasFace
	}

	faceSize := v.FaceSize
	switch faceSize {
	case model.FaceSizeNone, model.FaceSizeSmall, model.FaceSizeMedium, model.FaceSizeLarge:
	default:
		faceSize = model.FaceSizeNone
	}

	reason := v.Reason
	if len(v.Indicators) > 0 {
		reason = fmt.Sprintf("%s (indicators: %s)", reason, strings.Join(v.Indicators, ", "))
	}

	return model.ClassificationResult{
		IsDark:        *v.IsDark,
		Confidence:    confidence,
		HasFace:       hasFace,
		FaceSize:      faceSize,
		ContentType:   v.ContentType,
		Reason:        reason,
		HasEnoughData: true,
	}, nil
}

// extractJSONObject returns the first balanced {...} block in the text.
func extractJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
