package translator

import (
	"context"
	"errors"
	"fmt"
	"time"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/valpere/tradutor/internal/postprocess"
)

// GoogleService talks to the Cloud Translation v2 API. Credentials come from
// cfg.Credentials or the usual application-default lookup.
type GoogleService struct {
	opts    []option.ClientOption
	cleanup postprocess.Mode
}

func NewGoogleService(cfg ServiceConfig, extra ...option.ClientOption) *GoogleService {
	var opts []option.ClientOption
	if cfg.Credentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Credentials))
	}
	if cfg.ProjectID != "" {
		opts = append(opts, option.WithQuotaProject(cfg.ProjectID))
	}
	return &GoogleService{opts: append(opts, extra...), cleanup: cfg.Cleanup}
}

func (s *GoogleService) Name() string {
	return "google"
}

func (s *GoogleService) Translate(ctx context.Context, req TranslateRequest) (*Result, error) {
	result := &Result{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	targetTag, err := language.Parse(req.TargetLang)
	if err != nil {
		return result, result.fail(OutcomeNetworkError, &NetworkError{Err: fmt.Errorf("invalid target language: %w", err)})
	}
	sourceTag, err := language.Parse(req.SourceLang)
	if err != nil {
		return result, result.fail(OutcomeNetworkError, &NetworkError{Err: fmt.Errorf("invalid source language: %w", err)})
	}

	client, err := translate.NewClient(ctx, s.opts...)
	if err != nil {
		return result, result.fail(OutcomeNetworkError, &NetworkError{Err: fmt.Errorf("failed to create client: %w", err)})
	}
	defer client.Close()

	translations, err := client.Translate(ctx, []string{req.Text}, targetTag, &translate.Options{
		Source: sourceTag,
		Format: translate.Text,
	})
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return result, result.fail(OutcomeTransportError, &TransportError{StatusCode: apiErr.Code})
		}
		return result, result.fail(OutcomeNetworkError, &NetworkError{Err: err})
	}

	if len(translations) == 0 || translations[0].Text == "" {
		return result, result.fail(OutcomeSoftError, ErrNoTranslation)
	}

	result.Outcome = OutcomeSuccess
	result.TranslatedText = postprocess.Apply(s.cleanup, translations[0].Text)
	result.Match = 1.0

	return result, nil
}

func (s *GoogleService) SupportedLanguages(ctx context.Context) ([]string, error) {
	client, err := translate.NewClient(ctx, s.opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	langs, err := client.SupportedLanguages(ctx, language.English)
	if err != nil {
		return nil, fmt.Errorf("failed to list languages: %w", err)
	}

	codes := make([]string, 0, len(langs))
	for _, l := range langs {
		codes = append(codes, l.Tag.String())
	}
	return codes, nil
}
