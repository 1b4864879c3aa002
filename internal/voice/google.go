package voice

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/teomanelik/aiko/internal/reliability"
)

// GoogleConfig configures the Cloud Speech and Text-to-Speech REST
// backends. Only the API key is mandatory; everything else defaults to
// the values the gateway negotiates with clients.
type GoogleConfig struct {
	APIKey      string
	STTBaseURL  string
	TTSBaseURL  string
	Language    string
	Voice       string
	HTTPTimeout time.Duration
}

type GoogleProvider struct {
	cfg    GoogleConfig
	client *http.Client
}

const (
	googleRetryMax     = 2
	googleRetryBase    = 200 * time.Millisecond
	googleRetryCeiling = 2 * time.Second
)

func NewGoogleProvider(cfg GoogleConfig) (*GoogleProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("google speech: api key is required")
	}
	if strings.TrimSpace(cfg.STTBaseURL) == "" {
		cfg.STTBaseURL = "https://speech.googleapis.com"
	}
	if strings.TrimSpace(cfg.TTSBaseURL) == "" {
		cfg.TTSBaseURL = "https://texttospeech.googleapis.com"
	}
	if strings.TrimSpace(cfg.Language) == "" {
		cfg.Language = "en-US"
	}
	if strings.TrimSpace(cfg.Voice) == "" {
		cfg.Voice = "en-US-Neural2-F"
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	return &GoogleProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.HTTPTimeout},
	}, nil
}

type recognizeRequest struct {
	Config recognizeConfig `json:"config"`
	Audio  recognizeAudio  `json:"audio"`
}

type recognizeConfig struct {
	Encoding        string `json:"encoding"`
	SampleRateHertz int    `json:"sampleRateHertz"`
	LanguageCode    string `json:"languageCode"`
}

type recognizeAudio struct {
	Content string `json:"content"`
}

type recognizeResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"results"`
}

// Transcribe sends one utterance of LINEAR16 PCM to speech:recognize.
// Audio the service recognizes nothing in comes back as an empty
// transcript, never as an error.
func (p *GoogleProvider) Transcribe(ctx context.Context, pcm []byte, sampleRateHz int) (string, error) {
	body, err := json.Marshal(recognizeRequest{
		Config: recognizeConfig{
			Encoding:        "LINEAR16",
			SampleRateHertz: sampleRateHz,
			LanguageCode:    p.cfg.Language,
		},
		Audio: recognizeAudio{Content: base64.StdEncoding.EncodeToString(pcm)},
	})
	if err != nil {
		return "", fmt.Errorf("encode recognize request: %w", err)
	}

	data, err := p.post(ctx, strings.TrimRight(p.cfg.STTBaseURL, "/")+"/v1/speech:recognize", body)
	if err != nil {
		return "", fmt.Errorf("speech recognize: %w", err)
	}

	var resp recognizeResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("decode recognize response: %w", err)
	}
	var sb strings.Builder
	for _, r := range resp.Results {
		if len(r.Alternatives) == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(r.Alternatives[0].Transcript)
	}
	return strings.TrimSpace(sb.String()), nil
}

type synthesizeRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string `json:"audioEncoding"`
	} `json:"audioConfig"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

// Synthesize renders text through text:synthesize and returns decoded
// MP3 bytes.
func (p *GoogleProvider) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	var req synthesizeRequest
	req.Input.Text = text
	req.Voice.LanguageCode = p.cfg.Language
	req.Voice.Name = p.cfg.Voice
	req.AudioConfig.AudioEncoding = "MP3"

	body, err := json.Marshal(req)
	if err != nil {
		return nil, "", fmt.Errorf("encode synthesize request: %w", err)
	}

	data, err := p.post(ctx, strings.TrimRight(p.cfg.TTSBaseURL, "/")+"/v1/text:synthesize", body)
	if err != nil {
		return nil, "", fmt.Errorf("speech synthesize: %w", err)
	}

	var resp synthesizeResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, "", fmt.Errorf("decode synthesize response: %w", err)
	}
	audio, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return nil, "", fmt.Errorf("decode synthesized audio: %w", err)
	}
	return audio, "mp3", nil
}

// post issues a keyed JSON POST, retrying transient statuses with
// capped backoff.
func (p *GoogleProvider) post(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	endpoint += "?key=" + url.QueryEscape(p.cfg.APIKey)

	var lastErr error
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := p.client.Do(req)
		if err != nil {
			lastErr = err
		} else {
			data, readErr := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
			resp.Body.Close()
			if readErr != nil {
				lastErr = readErr
			} else if resp.StatusCode == http.StatusOK {
				return data, nil
			} else {
				lastErr = fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(data), 200))
				if !reliability.RetryableStatus(resp.StatusCode) {
					return nil, lastErr
				}
			}
		}
		if attempt >= googleRetryMax {
			return nil, lastErr
		}
		if err := reliability.Sleep(ctx, reliability.Backoff(attempt, googleRetryBase, googleRetryCeiling)); err != nil {
			return nil, err
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
