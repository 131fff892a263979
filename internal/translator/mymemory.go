package translator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/valpere/tradutor/internal/postprocess"
)

const DefaultMyMemoryEndpoint = "https://api.mymemory.translated.net/get"

type MyMemoryService struct {
	endpoint string
	email    string
	cleanup  postprocess.Mode
	client   *http.Client
}

// NewMyMemoryService builds a client for the MyMemory "get" endpoint. An
// empty endpoint selects the public service; a zero timeout leaves the
// transport defaults in place.
func NewMyMemoryService(cfg ServiceConfig) *MyMemoryService {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultMyMemoryEndpoint
	}
	return &MyMemoryService{
		endpoint: endpoint,
		email:    cfg.Email,
		cleanup:  cfg.Cleanup,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

func (s *MyMemoryService) Name() string {
	return "mymemory"
}

type myMemoryResponse struct {
	ResponseData *struct {
		TranslatedText *string `json:"translatedText"`
		Match          float64 `json:"match"`
	} `json:"responseData"`
	ResponseDetails string `json:"responseDetails"`
}

func (s *MyMemoryService) Translate(ctx context.Context, req TranslateRequest) (*Result, error) {
	result := &Result{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.requestURL(req), nil)
	if err != nil {
		return result, result.fail(OutcomeNetworkError, &NetworkError{Err: fmt.Errorf("failed to create request: %w", err)})
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return result, result.fail(OutcomeNetworkError, &NetworkError{Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return result, result.fail(OutcomeTransportError, &TransportError{StatusCode: resp.StatusCode})
	}

	var mymemResp myMemoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&mymemResp); err != nil {
		return result, result.fail(OutcomeNetworkError, &NetworkError{Err: fmt.Errorf("failed to decode response: %w", err)})
	}

	if mymemResp.ResponseData == nil || mymemResp.ResponseData.TranslatedText == nil {
		err := ErrNoTranslation
		if mymemResp.ResponseDetails != "" {
			err = fmt.Errorf("%w: %s", ErrNoTranslation, mymemResp.ResponseDetails)
		}
		return result, result.fail(OutcomeSoftError, err)
	}

	result.Outcome = OutcomeSuccess
	result.TranslatedText = postprocess.Apply(s.cleanup, *mymemResp.ResponseData.TranslatedText)
	result.Match = min(max(mymemResp.ResponseData.Match, 0), 1)

	return result, nil
}

func (s *MyMemoryService) requestURL(req TranslateRequest) string {
	langPair := fmt.Sprintf("%s|%s", req.SourceLang, req.TargetLang)

	apiURL := fmt.Sprintf("%s?q=%s&langpair=%s",
		s.endpoint,
		url.QueryEscape(req.Text),
		url.QueryEscape(langPair))

	if s.email != "" {
		apiURL += fmt.Sprintf("&de=%s", url.QueryEscape(s.email))
	}
	return apiURL
}

func (s *MyMemoryService) SupportedLanguages(ctx context.Context) ([]string, error) {
	return []string{
		"en", "es", "fr", "de", "it", "pt", "ru", "ja", "ko", "zh",
		"ar", "nl", "pl", "tr", "sv", "da", "no", "fi", "el", "he",
		"th", "vi", "id", "ms", "cs", "hu", "ro", "uk", "bg", "ca",
	}, nil
}
