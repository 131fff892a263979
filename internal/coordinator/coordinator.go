// Package coordinator owns the state of one translation session and decides
// when the translation service is called.
//
// Every edit to the source text or to either language restarts a debounce
// timer; only when the input has been quiet for the configured delay is a
// single attempt issued with the values current at that moment. Attempts are
// numbered: starting a new one cancels the previous one and only the newest
// attempt may write its result into the state.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/valpere/tradutor/internal/catalog"
	"github.com/valpere/tradutor/internal/translator"
)

// DefaultDelay is the quiet period before an edit turns into a request.
const DefaultDelay = 500 * time.Millisecond

// MsgCouldNotTranslate is shown when the service answered without a translation.
const MsgCouldNotTranslate = "Não foi possível traduzir o texto."

const msgFailure = "Erro ao tentar traduzir: %s. Tente novamente."

// State is a snapshot of the session.
type State struct {
	SourceLang     string `json:"source_lang"`
	TargetLang     string `json:"target_lang"`
	SourceText     string `json:"source_text"`
	Loading        bool   `json:"loading"`
	TranslatedText string `json:"translated_text"`
	Error          string `json:"error,omitempty"`
}

type Config struct {
	SourceLang string
	TargetLang string
	// Delay defaults to DefaultDelay when zero.
	Delay time.Duration
	// Timeout bounds a single attempt; zero leaves it to the transport.
	Timeout time.Duration
}

type Option func(*Coordinator)

func WithLogger(log *slog.Logger) Option {
	return func(c *Coordinator) {
		if log != nil {
			c.log = log
		}
	}
}

// WithObserver registers fn to receive a snapshot after every state change.
// fn runs while the coordinator is locked and must not call back into it.
func WithObserver(fn func(State)) Option {
	return func(c *Coordinator) {
		c.observer = fn
	}
}

type Coordinator struct {
	svc      translator.TranslationService
	delay    time.Duration
	timeout  time.Duration
	log      *slog.Logger
	observer func(State)

	root context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu      sync.Mutex
	state   State
	timer   *time.Timer
	gen     uint64
	pending bool
	attempt uint64
	cancel  context.CancelFunc
	changed chan struct{}
	closed  bool
}

func New(svc translator.TranslationService, cfg Config, opts ...Option) (*Coordinator, error) {
	if svc == nil {
		return nil, errors.New("translation service is required")
	}
	if cfg.Delay < 0 {
		return nil, fmt.Errorf("negative debounce delay: %s", cfg.Delay)
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("negative timeout: %s", cfg.Timeout)
	}
	if cfg.Delay == 0 {
		cfg.Delay = DefaultDelay
	}
	if cfg.SourceLang == "" {
		cfg.SourceLang = catalog.DefaultSource
	}
	if cfg.TargetLang == "" {
		cfg.TargetLang = catalog.DefaultTarget
	}
	if err := catalog.Validate(cfg.SourceLang); err != nil {
		return nil, fmt.Errorf("source language: %w", err)
	}
	if err := catalog.Validate(cfg.TargetLang); err != nil {
		return nil, fmt.Errorf("target language: %w", err)
	}

	root, stop := context.WithCancel(context.Background())
	c := &Coordinator{
		svc:     svc,
		delay:   cfg.Delay,
		timeout: cfg.Timeout,
		log:     slog.Default(),
		root:    root,
		stop:    stop,
		changed: make(chan struct{}),
		state: State{
			SourceLang: cfg.SourceLang,
			TargetLang: cfg.TargetLang,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// State returns the current snapshot.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetSourceText replaces the text to translate. Setting the current value
// again changes nothing.
func (c *Coordinator) SetSourceText(text string) {
	c.update(func(s *State) {
		s.SourceText = text
	})
}

func (c *Coordinator) SetSourceLang(code string) error {
	if err := catalog.Validate(code); err != nil {
		return err
	}
	c.update(func(s *State) {
		s.SourceLang = code
	})
	return nil
}

func (c *Coordinator) SetTargetLang(code string) error {
	if err := catalog.Validate(code); err != nil {
		return err
	}
	c.update(func(s *State) {
		s.TargetLang = code
	})
	return nil
}

// Swap exchanges the two languages and moves the translation into the input
// and the input into the output, as one change.
func (c *Coordinator) Swap() {
	c.update(func(s *State) {
		s.SourceLang, s.TargetLang = s.TargetLang, s.SourceLang
		s.SourceText, s.TranslatedText = s.TranslatedText, s.SourceText
	})
}

// update applies fn and restarts the debounce when one of the watched fields
// (text, source, target) changed.
func (c *Coordinator) update(fn func(*State)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	before := c.state
	fn(&c.state)
	if c.state == before {
		return
	}

	if c.state.SourceText != before.SourceText ||
		c.state.SourceLang != before.SourceLang ||
		c.state.TargetLang != before.TargetLang {
		c.rescheduleLocked()
	}
	c.notifyLocked()
}

func (c *Coordinator) rescheduleLocked() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.pending = false

	if c.state.SourceText == "" {
		return
	}

	gen := c.gen
	c.pending = true
	c.timer = time.AfterFunc(c.delay, func() { c.fire(gen) })
}

// Flush starts a scheduled attempt right away instead of waiting for the
// timer, then waits like Settle.
func (c *Coordinator) Flush(ctx context.Context) error {
	c.mu.Lock()
	pending, gen := c.pending, c.gen
	if pending && c.timer != nil {
		c.timer.Stop()
	}
	c.mu.Unlock()

	if pending {
		c.fire(gen)
	}
	return c.Settle(ctx)
}

// fire starts the attempt scheduled under generation gen. A timer whose Stop
// lost the race with its own expiry finds a newer generation and drops out.
func (c *Coordinator) fire(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.gen || !c.pending {
		c.mu.Unlock()
		return
	}
	c.gen++
	c.timer = nil
	c.pending = false

	req := translator.TranslateRequest{
		Text:       c.state.SourceText,
		SourceLang: c.state.SourceLang,
		TargetLang: c.state.TargetLang,
	}

	if c.cancel != nil {
		c.cancel()
	}
	c.attempt++
	seq := c.attempt

	var ctx context.Context
	if c.timeout > 0 {
		ctx, c.cancel = context.WithTimeout(c.root, c.timeout)
	} else {
		ctx, c.cancel = context.WithCancel(c.root)
	}

	c.state.Loading = true
	c.state.Error = ""
	c.notifyLocked()

	c.wg.Add(1)
	c.mu.Unlock()

	defer c.wg.Done()
	c.run(ctx, seq, req)
}

func (c *Coordinator) run(ctx context.Context, seq uint64, req translator.TranslateRequest) {
	log := c.log.With(
		slog.String("attempt_id", uuid.NewString()),
		slog.Uint64("seq", seq),
		slog.String("service", c.svc.Name()),
		slog.String("langpair", req.SourceLang+"|"+req.TargetLang),
	)
	log.Debug("translation started", slog.Int("chars", utf8.RuneCountInString(req.Text)))

	result, err := c.svc.Translate(ctx, req)
	if result == nil {
		result = &translator.Result{ServiceName: c.svc.Name(), Outcome: translator.OutcomeNetworkError}
		if err != nil {
			result.Error = err.Error()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || seq != c.attempt {
		log.Debug("discarding superseded translation", slog.String("outcome", result.Outcome.String()))
		return
	}
	c.cancel()
	c.cancel = nil

	if result.Outcome == translator.OutcomeSuccess {
		c.state.TranslatedText = result.TranslatedText
		c.state.Error = ""
		log.Info("translation finished",
			slog.String("outcome", result.Outcome.String()),
			slog.Duration("latency", result.Latency),
			slog.Float64("match", result.Match),
		)
	} else {
		c.state.Error = Describe(result)
		log.Warn("translation failed",
			slog.String("outcome", result.Outcome.String()),
			slog.Duration("latency", result.Latency),
			slog.String("error", result.Error),
		)
	}
	c.state.Loading = false
	c.notifyLocked()
}

// Describe turns a failed result into the message shown to the user.
// It returns "" for a successful result.
func Describe(result *translator.Result) string {
	switch result.Outcome {
	case translator.OutcomeSuccess:
		return ""
	case translator.OutcomeSoftError:
		return MsgCouldNotTranslate
	default:
		return fmt.Sprintf(msgFailure, result.Error)
	}
}

func (c *Coordinator) notifyLocked() {
	close(c.changed)
	c.changed = make(chan struct{})
	if c.observer != nil {
		c.observer(c.state)
	}
}

// Settle blocks until no attempt is scheduled or in flight.
func (c *Coordinator) Settle(ctx context.Context) error {
	for {
		c.mu.Lock()
		idle := c.closed || (!c.pending && !c.state.Loading)
		changed := c.changed
		c.mu.Unlock()

		if idle {
			return nil
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close drops the pending timer, cancels the attempt in flight and waits for
// it to return. Later calls to the mutators are ignored.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.pending = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state.Loading = false
	close(c.changed)
	c.changed = make(chan struct{})
	c.mu.Unlock()

	c.stop()
	c.wg.Wait()
}
