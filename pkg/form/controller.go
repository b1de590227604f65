package form

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/mwantia/tomodb/pkg/dataset"
	"github.com/mwantia/tomodb/pkg/draft"
	"github.com/mwantia/tomodb/pkg/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Creator stores a validated record under a new identifier.
type Creator interface {
	Create(ctx context.Context, record dataset.Record) (dataset.Record, error)
}

type Option func(*Controller)

func WithKey(key string) Option {
	return func(c *Controller) {
		c.key = key
	}
}

func WithLogger(logger log.LoggerService) Option {
	return func(c *Controller) {
		c.log = logger
	}
}

// WithExitHandler sets the callback run after the draft was saved on exit.
func WithExitHandler(onExit func()) Option {
	return func(c *Controller) {
		c.onExit = onExit
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// Controller owns the add-dataset form state and its draft.
type Controller struct {
	repo    draft.Repository
	creator Creator
	key     string
	log     log.LoggerService
	onExit  func()
	now     func() time.Time

	mutex  sync.Mutex
	state  State
	errors ValidationErrors
}

func NewController(repo draft.Repository, creator Creator, opts ...Option) *Controller {
	c := &Controller{
		repo:    repo,
		creator: creator,
		key:     draft.DefaultKey,
		onExit:  func() {},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = log.NewNopLogger()
	}

	c.state = NewState(c.now())
	return c
}

// Open resets the form and recovers a saved draft if one exists. The draft
// is cleared afterwards, also when it could not be decoded.
func (c *Controller) Open(ctx context.Context) (bool, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.state = NewState(c.now())
	c.errors = nil

	raw, ok, err := c.repo.Load(ctx, c.key)
	if err != nil {
		return false, fmt.Errorf("failed to load draft %s: %w", c.key, err)
	}
	if !ok {
		return false, nil
	}

	recovered := c.state
	if err := json.Unmarshal(raw, &recovered); err != nil {
		c.log.Error("Discarding unreadable draft %s: %v", c.key, err)
		if err := c.repo.Clear(ctx, c.key); err != nil {
			return false, fmt.Errorf("failed to clear draft %s: %w", c.key, err)
		}
		return false, nil
	}

	c.state = recovered
	if err := c.repo.Clear(ctx, c.key); err != nil {
		return true, fmt.Errorf("failed to clear draft %s: %w", c.key, err)
	}

	c.log.Info("Recovered draft %s", c.key)
	return true, nil
}

func (c *Controller) State() State {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	s := c.state
	s.FileTypes = append([]string(nil), c.state.FileTypes...)
	return s
}

// Errors returns the messages of the last failed submission that are still
// unresolved.
func (c *Controller) Errors() ValidationErrors {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	out := make(ValidationErrors, len(c.errors))
	for k, v := range c.errors {
		out[k] = v
	}
	return out
}

// Set changes one field and drops its pending validation message.
func (c *Controller) Set(field, value string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if err := c.state.Set(field, value); err != nil {
		return err
	}
	delete(c.errors, field)
	return nil
}

func (c *Controller) ToggleTag(tag string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.state.ToggleFileType(tag)
	delete(c.errors, "fileTypes")
}

// SaveDraft stores the current state under the controller's key.
func (c *Controller) SaveDraft(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.saveDraft(ctx)
}

func (c *Controller) saveDraft(ctx context.Context) error {
	raw, err := json.Marshal(c.state)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	if err := c.repo.Save(ctx, c.key, raw); err != nil {
		return fmt.Errorf("failed to save draft %s: %w", c.key, err)
	}
	return nil
}

// Exit saves the draft and leaves the form when intent is an exit gesture.
// It reports whether the form was left. A failed save is logged and does not
// keep the user on the form.
func (c *Controller) Exit(ctx context.Context, intent Intent) bool {
	if intent == IntentNone {
		return false
	}

	c.mutex.Lock()
	if err := c.saveDraft(ctx); err != nil {
		c.log.Error("Leaving form without draft: %v", err)
	} else {
		c.log.Debug("Saved draft %s on %s", c.key, intent)
	}
	onExit := c.onExit
	c.mutex.Unlock()

	onExit()
	return true
}

// Submit validates the form and creates the dataset. Validation failures
// are returned as ValidationErrors and kept for Errors.
func (c *Controller) Submit(ctx context.Context) (dataset.Record, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if err := Validate(c.state); err != nil {
		var verrs ValidationErrors
		if errors.As(err, &verrs) {
			c.errors = verrs
		}
		return dataset.Record{}, err
	}
	c.errors = nil

	created, err := c.creator.Create(ctx, c.state.Record())
	if err != nil {
		return dataset.Record{}, fmt.Errorf("failed to submit form: %w", err)
	}

	if err := c.repo.Clear(ctx, c.key); err != nil {
		c.log.Warn("Dataset %s created but draft %s could not be cleared: %v", created.ID, c.key, err)
	}
	c.state = NewState(c.now())

	return created, nil
}
