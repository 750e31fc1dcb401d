package form

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"property-leads/pkg/models"
	"property-leads/pkg/utils"
)

// FailureMessage is shown when the collector cannot be reached.
const FailureMessage = "There was an error submitting your request. Please try again."

var (
	ErrValidation       = errors.New("form has validation errors")
	ErrSubmitInProgress = errors.New("submission already in progress")
	ErrAlreadySubmitted = errors.New("form already submitted")
	ErrCollectorFailure = errors.New("collector unreachable")
)

// Collector forwards a lead to the external data-collection endpoint.
// Only transport failures are reported; response contents are never inspected.
type Collector interface {
	Submit(ctx context.Context, payload models.LeadPayload) error
}

// View is the snapshot the presentation layer renders
type View struct {
	Status        models.Status     `json:"status"`
	Values        *models.FormState `json:"values,omitempty"`
	Errors        models.ErrorMap   `json:"errors"`
	VisibleFields []models.Field    `json:"visibleFields"`
	IsSubmitting  bool              `json:"isSubmitting"`
	ShowSuccess   bool              `json:"showSuccess"`
	SubmitMessage string            `json:"submitMessage,omitempty"`
}

// Controller owns the state of one mounted form
type Controller struct {
	mu        sync.Mutex
	collector Collector
	state     models.FormState
	errors    models.ErrorMap
	status    models.Status
	message   string
	now       func() time.Time
	logger    *zap.Logger
}

// Option configures a Controller
type Option func(*Controller)

// WithClock overrides the clock used for submission timestamps
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithState prefills the form, as when a whole lead arrives at once
func WithState(s models.FormState) Option {
	return func(c *Controller) { c.state = s }
}

// NewController mounts an empty form in the idle state
func NewController(collector Collector, opts ...Option) *Controller {
	c := &Controller{
		collector: collector,
		errors:    models.ErrorMap{},
		status:    models.StatusIdle,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetField applies a field-change event. The field's error, if any, is
// cleared without re-validating.
func (c *Controller) SetField(field models.Field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status == models.StatusSucceeded {
		return ErrAlreadySubmitted
	}
	if err := c.state.Set(field, value); err != nil {
		return err
	}
	delete(c.errors, field)
	return nil
}

// Submit validates the form and forwards it to the collector. The lock is
// released during the collector call; the submitting status keeps a second
// submission out. Cancelling ctx does not abort a submission in flight.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	switch c.status {
	case models.StatusSubmitting:
		c.mu.Unlock()
		return ErrSubmitInProgress
	case models.StatusSucceeded:
		c.mu.Unlock()
		return ErrAlreadySubmitted
	}

	c.errors = Validate(c.state)
	if len(c.errors) > 0 {
		c.mu.Unlock()
		c.logger.Debug("Form rejected", zap.Int("errors", len(c.errors)))
		return ErrValidation
	}

	c.status = models.StatusSubmitting
	c.message = ""
	payload := models.NewLeadPayload(c.state, c.now())
	c.mu.Unlock()

	phoneHash := utils.HashPhone(payload.PhoneNumber)
	c.logger.Info("Submitting lead", zap.String("phone_hash", phoneHash))

	// Once in flight a submission runs to completion; only the collector's
	// own timeout bounds it.
	err := c.collector.Submit(context.WithoutCancel(ctx), payload)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.status = models.StatusIdle
		c.message = FailureMessage
		c.logger.Warn("Lead submission failed", zap.String("phone_hash", phoneHash), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrCollectorFailure, err)
	}

	c.status = models.StatusSucceeded
	c.state = models.FormState{}
	c.errors = models.ErrorMap{}
	c.logger.Info("Lead submitted", zap.String("phone_hash", phoneHash))
	return nil
}

// Status returns the current submission status
func (c *Controller) Status() models.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Errors returns a copy of the active validation messages
func (c *Controller) Errors() models.ErrorMap {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errors.Clone()
}

// View snapshots the controller for rendering. Values are omitted once the
// lead has been submitted.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		Status:        c.status,
		Errors:        c.errors.Clone(),
		IsSubmitting:  c.status == models.StatusSubmitting,
		ShowSuccess:   c.status == models.StatusSucceeded,
		SubmitMessage: c.message,
	}
	if !v.ShowSuccess {
		state := c.state
		v.Values = &state
		v.VisibleFields = VisibleFields(state)
	}
	return v
}
