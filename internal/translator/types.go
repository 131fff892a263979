package translator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/valpere/tradutor/internal/postprocess"
)

// ErrNoTranslation is the soft failure: the service answered but the
// payload carried no translated text.
var ErrNoTranslation = errors.New("response has no translated text")

// TransportError is a non-2xx HTTP answer.
type TransportError struct {
	StatusCode int
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("HTTP ERROR: %d", e.StatusCode)
}

// NetworkError covers connection failures and undecodable bodies.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Outcome tells which variant a Result holds.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeSoftError
	OutcomeTransportError
	OutcomeNetworkError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeSoftError:
		return "soft_error"
	case OutcomeTransportError:
		return "transport_error"
	case OutcomeNetworkError:
		return "network_error"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

type ServiceConfig struct {
	Endpoint    string        `mapstructure:"endpoint" json:"endpoint"`
	Email       string        `mapstructure:"email" json:"email"`
	Credentials string        `mapstructure:"credentials" json:"credentials"`
	ProjectID   string        `mapstructure:"project_id" json:"project_id"`
	Timeout     time.Duration `mapstructure:"timeout" json:"timeout"`
	// Cleanup is applied to translated text; the zero value keeps it verbatim.
	Cleanup postprocess.Mode `mapstructure:"cleanup" json:"cleanup"`
}

type TranslateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

// Result is returned for every attempt, successful or not. Only the fields
// relevant to Outcome are set.
type Result struct {
	ServiceName    string        `json:"service_name"`
	Outcome        Outcome       `json:"outcome"`
	TranslatedText string        `json:"translated_text,omitempty"`
	Match          float64       `json:"match,omitempty"`
	StatusCode     int           `json:"status_code,omitempty"`
	Error          string        `json:"error,omitempty"`
	Latency        time.Duration `json:"latency"`
}

// fail records err on the result and returns it unchanged so call sites can
// write `return result, result.fail(...)`.
func (r *Result) fail(outcome Outcome, err error) error {
	r.Outcome = outcome
	r.Error = err.Error()

	var te *TransportError
	if errors.As(err, &te) {
		r.StatusCode = te.StatusCode
	}
	return err
}

type TranslationService interface {
	Name() string
	Translate(ctx context.Context, req TranslateRequest) (*Result, error)
	SupportedLanguages(ctx context.Context) ([]string, error)
}
