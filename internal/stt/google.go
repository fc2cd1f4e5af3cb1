package stt

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	DefaultGoogleEndpoint = "https://speech.googleapis.com/v1/speech:recognize"
	googleScope           = "https://www.googleapis.com/auth/cloud-platform"
)

// GoogleRecognizer implements Recognizer using the Google Cloud
// Speech-to-Text v1 REST API
type GoogleRecognizer struct {
	projectID  string
	apiKey     string
	endpoint   string
	httpClient *http.Client
	useAPIKey  bool // true if using API key, false if using service account
}

// NewGoogleRecognizer creates a Google recognizer.
// keyData can be either:
//   - An API key (39 characters, typically starts with "AIzaSy")
//   - A file path to a JSON key file (e.g., "./keys/google-service-account.json")
//   - A JSON string containing the service account credentials
//   - Empty, to use application default credentials
func NewGoogleRecognizer(ctx context.Context, projectID, keyData, endpoint string) (*GoogleRecognizer, error) {
	if endpoint == "" {
		endpoint = DefaultGoogleEndpoint
	}
	keyDataTrimmed := strings.TrimSpace(keyData)

	if isGoogleAPIKey(keyDataTrimmed) {
		log.Printf("[Google STT] Using API key authentication")
		return &GoogleRecognizer{
			projectID:  projectID,
			apiKey:     keyDataTrimmed,
			endpoint:   endpoint,
			httpClient: &http.Client{},
			useAPIKey:  true,
		}, nil
	}

	var creds *google.Credentials
	var err error

	switch {
	case keyDataTrimmed == "":
		creds, err = google.FindDefaultCredentials(ctx, googleScope)
		if err != nil {
			return nil, fmt.Errorf("failed to find default credentials: %w. Please set GOOGLE_STT_KEY_FILE", err)
		}
	case strings.HasPrefix(keyDataTrimmed, "{"):
		log.Printf("[Google STT] Using JSON credentials from environment variable")
		creds, err = google.CredentialsFromJSON(ctx, []byte(keyDataTrimmed), googleScope)
		if err != nil {
			return nil, fmt.Errorf("failed to create credentials from JSON: %w", err)
		}
	default:
		log.Printf("[Google STT] Reading key file: %s", keyDataTrimmed)
		jsonData, err := os.ReadFile(keyDataTrimmed)
		if err != nil {
			return nil, fmt.Errorf("failed to read key file '%s': %w", keyDataTrimmed, err)
		}
		creds, err = google.CredentialsFromJSON(ctx, jsonData, googleScope)
		if err != nil {
			return nil, fmt.Errorf("failed to create credentials from JSON: %w", err)
		}
	}

	if projectID == "" {
		projectID = creds.ProjectID
	}

	return &GoogleRecognizer{
		projectID:  projectID,
		endpoint:   endpoint,
		httpClient: oauth2.NewClient(context.Background(), creds.TokenSource),
	}, nil
}

func isGoogleAPIKey(key string) bool {
	return len(key) == 39 && strings.HasPrefix(key, "AIzaSy")
}

// Name returns the provider name
func (p *GoogleRecognizer) Name() string {
	return "google"
}

type googleRecognizeRequest struct {
	Config googleRecognitionConfig `json:"config"`
	Audio  googleRecognitionAudio  `json:"audio"`
}

type googleRecognitionConfig struct {
	Encoding        string `json:"encoding"`
	SampleRateHertz int    `json:"sampleRateHertz,omitempty"`
	LanguageCode    string `json:"languageCode"`
}

type googleRecognitionAudio struct {
	Content string `json:"content"` // Base64 encoded
}

type googleRecognizeResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"results"`
}

type googleErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Recognize calls speech:recognize. An empty result list is not an error:
// it yields a Response without segments.
func (p *GoogleRecognizer) Recognize(ctx context.Context, audio []byte, cfg RecognitionConfig) (*Response, error) {
	reqBody := googleRecognizeRequest{
		Config: googleRecognitionConfig{
			Encoding:        string(cfg.Encoding),
			SampleRateHertz: cfg.SampleRateHertz,
			LanguageCode:    cfg.LanguageCode,
		},
		Audio: googleRecognitionAudio{
			Content: base64.StdEncoding.EncodeToString(audio),
		},
	}

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	apiURL, err := p.requestURL()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(reqJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if !p.useAPIKey && p.projectID != "" {
		req.Header.Set("x-goog-user-project", p.projectID)
	}

	log.Printf("[Google STT] Calling Google Speech-to-Text API (encoding=%s, sampleRate=%d, language=%s)",
		cfg.Encoding, cfg.SampleRateHertz, cfg.LanguageCode)
	resp, err := p.httpClient.Do(req)
	if err != nil {
		log.Printf("[Google STT] HTTP error: %v", err)
		return nil, fmt.Errorf("failed to send request to Google Speech-to-Text: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr googleErrorResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
			log.Printf("[Google STT] API error: Code %d, Status %s, Message: %s",
				apiErr.Error.Code, apiErr.Error.Status, apiErr.Error.Message)
			return nil, fmt.Errorf("Google Speech-to-Text API error: %s", apiErr.Error.Message)
		}
		log.Printf("[Google STT] API error: Status %d, Body: %s", resp.StatusCode, preview(body))
		return nil, fmt.Errorf("Google Speech-to-Text API returned status %d: %s", resp.StatusCode, preview(body))
	}

	var sttResp googleRecognizeResponse
	if err := json.Unmarshal(body, &sttResp); err != nil {
		log.Printf("[Google STT] Failed to parse response. Raw body: %s", preview(body))
		return nil, fmt.Errorf("failed to parse Google Speech-to-Text response: %w", err)
	}

	out := &Response{Segments: make([]Segment, 0, len(sttResp.Results))}
	for _, r := range sttResp.Results {
		seg := Segment{Alternatives: make([]Alternative, 0, len(r.Alternatives))}
		for _, alt := range r.Alternatives {
			seg.Alternatives = append(seg.Alternatives, Alternative{
				Transcript: alt.Transcript,
				Confidence: alt.Confidence,
			})
		}
		out.Segments = append(out.Segments, seg)
	}

	if len(out.Segments) == 0 {
		log.Printf("[Google STT] No results returned")
	}
	return out, nil
}

func (p *GoogleRecognizer) requestURL() (string, error) {
	if !p.useAPIKey {
		return p.endpoint, nil
	}
	u, err := url.Parse(p.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid Google endpoint: %w", err)
	}
	q := u.Query()
	q.Set("key", p.apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// preview truncates a response body for logs and error messages
func preview(body []byte) string {
	s := string(body)
	if len(s) > 500 {
		s = s[:500] + "..."
	}
	return s
}
