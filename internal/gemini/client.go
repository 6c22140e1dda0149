// Package gemini is the remote generative gateway: content packs, images,
// speech, task extraction, courses, health analysis and video, all through
// the Generative Language REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"brandflowAPI/internal/ai"
)

var ErrNoCandidate = errors.New("gemini: no response generated")

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini api error (%d): %s", e.StatusCode, e.Message)
}

type Models struct {
	Text   string
	Image  string
	Speech string
	Video  string
}

type Client struct {
	httpClient   *http.Client
	apiKey       string
	baseURL      string
	models       Models
	pollInterval time.Duration
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

func WithPollInterval(d time.Duration) Option {
	return func(cl *Client) { cl.pollInterval = d }
}

func NewClient(apiKey, baseURL string, models Models, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: timeout},
		apiKey:       apiKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		models:       models,
		pollInterval: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	}
	return c.send(ctx, method, c.baseURL+"/"+path, reader)
}

// send issues an authenticated request to an absolute URL and returns the
// response body of a 2xx answer.
func (c *Client) send(ctx context.Context, method, url string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := gjson.GetBytes(raw, "error.message").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	return raw, nil
}

func (c *Client) generate(ctx context.Context, model string, req *GenerateRequest) ([]byte, error) {
	raw, err := c.do(ctx, http.MethodPost, "models/"+model+":generateContent", req)
	if err != nil {
		return nil, err
	}
	if gjson.GetBytes(raw, "candidates.#").Int() == 0 {
		return nil, ErrNoCandidate
	}
	return raw, nil
}

// structured asks the text model for JSON matching schema and returns the
// JSON document from the first candidate.
func (c *Client) structured(ctx context.Context, parts []Part, schema *Schema) ([]byte, error) {
	raw, err := c.generate(ctx, c.models.Text, &GenerateRequest{
		Contents: []Content{{Role: "user", Parts: parts}},
		GenerationConfig: &GenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   schema,
		},
	})
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	for _, t := range gjson.GetBytes(raw, "candidates.0.content.parts.#.text").Array() {
		sb.WriteString(t.String())
	}
	if sb.Len() == 0 {
		return nil, ErrNoCandidate
	}
	return []byte(sb.String()), nil
}

// inlineData returns the first base64 blob in the first candidate, or ""
// when the model answered without one.
func inlineData(raw []byte) string {
	for _, d := range gjson.GetBytes(raw, "candidates.0.content.parts.#.inlineData.data").Array() {
		if s := d.String(); s != "" {
			return s
		}
	}
	return ""
}

func (c *Client) ContentPack(ctx context.Context, prompt, platform string) (ai.ContentPack, error) {
	raw, err := c.structured(ctx, []Part{{Text: contentPackPrompt(prompt, platform)}}, contentPackSchema)
	if err != nil {
		return ai.ContentPack{}, err
	}
	return ai.ParseContentPack(raw)
}

// MarketingImage returns base64 image bytes, or "" if no image came back.
func (c *Client) MarketingImage(ctx context.Context, visualPrompt string) (string, error) {
	raw, err := c.generate(ctx, c.models.Image, &GenerateRequest{
		Contents: []Content{{Parts: []Part{{Text: imagePrompt(visualPrompt)}}}},
		GenerationConfig: &GenerationConfig{
			ResponseModalities: []string{"IMAGE"},
			ImageConfig:        &ImageConfig{AspectRatio: "1:1"},
		},
	})
	if err != nil {
		return "", err
	}
	return inlineData(raw), nil
}

// Speech returns base64 16-bit PCM at 24 kHz, or "" if no audio came back.
func (c *Client) Speech(ctx context.Context, text, voiceName string) (string, error) {
	cfg := &GenerationConfig{ResponseModalities: []string{"AUDIO"}, SpeechConfig: &SpeechConfig{}}
	cfg.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName = voiceName

	raw, err := c.generate(ctx, c.models.Speech, &GenerateRequest{
		Contents:         []Content{{Parts: []Part{{Text: text}}}},
		GenerationConfig: cfg,
	})
	if err != nil {
		return "", err
	}
	return inlineData(raw), nil
}

// Task turns a business voice note into a task note. audio, when present,
// is sent inline alongside the instruction.
func (c *Client) Task(ctx context.Context, transcription string, audio []byte, mimeType string) (ai.TaskNote, error) {
	parts := []Part{{Text: taskPrompt(transcription)}}
	if len(audio) > 0 {
		parts = append([]Part{{InlineData: &InlineData{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(audio),
		}}}, parts...)
	}

	raw, err := c.structured(ctx, parts, taskNoteSchema)
	if err != nil {
		return ai.TaskNote{}, err
	}
	return ai.ParseTaskNote(raw)
}

func (c *Client) Course(ctx context.Context, goal string) (ai.Course, error) {
	raw, err := c.structured(ctx, []Part{{Text: coursePrompt(goal)}}, courseSchema)
	if err != nil {
		return ai.Course{}, err
	}
	return ai.ParseCourse(raw)
}

func (c *Client) HealthAnalysis(ctx context.Context, lifestyle string) (ai.HealthAnalysis, error) {
	raw, err := c.structured(ctx, []Part{{Text: healthPrompt(lifestyle)}}, healthSchema)
	if err != nil {
		return ai.HealthAnalysis{}, err
	}
	return ai.ParseHealthAnalysis(raw)
}

// Video starts a long-running video generation, polls it until done or ctx
// expires, then downloads the first generated clip. The file URI only
// answers requests carrying the API key, so callers get the bytes.
func (c *Client) Video(ctx context.Context, prompt string) ([]byte, error) {
	uri, err := c.videoURI(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return c.DownloadVideo(ctx, uri)
}

// DownloadVideo fetches a generated file URI with the API key.
func (c *Client) DownloadVideo(ctx context.Context, uri string) ([]byte, error) {
	b, err := c.send(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini: video download: %w", err)
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("gemini: video download returned no data")
	}
	return b, nil
}

func (c *Client) videoURI(ctx context.Context, prompt string) (string, error) {
	raw, err := c.do(ctx, http.MethodPost, "models/"+c.models.Video+":predictLongRunning", &VideoRequest{
		Instances:  []VideoInstance{{Prompt: prompt}},
		Parameters: VideoParameters{AspectRatio: "16:9", Resolution: "720p", NumberOfVideos: 1},
	})
	if err != nil {
		return "", err
	}

	name := gjson.GetBytes(raw, "name").String()
	if name == "" {
		return "", fmt.Errorf("gemini: video operation has no name")
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for !gjson.GetBytes(raw, "done").Bool() {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
		raw, err = c.do(ctx, http.MethodGet, name, nil)
		if err != nil {
			return "", err
		}
	}

	if msg := gjson.GetBytes(raw, "error.message").String(); msg != "" {
		return "", fmt.Errorf("gemini: video generation failed: %s", msg)
	}
	uri := gjson.GetBytes(raw, "response.generateVideoResponse.generatedSamples.0.video.uri").String()
	if uri == "" {
		return "", fmt.Errorf("gemini: video generation failed")
	}
	return uri, nil
}
