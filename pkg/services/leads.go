package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"property-leads/pkg/form"
	"property-leads/pkg/models"
	"property-leads/pkg/utils"
)

// LeadService defines the interface for one-shot lead submissions
type LeadService interface {
	SubmitLead(ctx context.Context, state models.FormState) (models.ErrorMap, error)
}

type leadServiceImpl struct {
	collector form.Collector
	logger    *zap.Logger
}

// NewLeadService creates a service that validates and forwards whole leads
func NewLeadService(collector form.Collector, logger *zap.Logger) LeadService {
	return &leadServiceImpl{
		collector: collector,
		logger:    logger,
	}
}

// SubmitLead validates state and forwards it to the collector. On
// validation failure the field messages are returned with form.ErrValidation.
func (s *leadServiceImpl) SubmitLead(ctx context.Context, state models.FormState) (models.ErrorMap, error) {
	s.logger.Info("Processing lead", zap.String("phone_hash", utils.HashPhone(state.PhoneNumber)))

	controller := form.NewController(s.collector, form.WithState(state), form.WithLogger(s.logger))
	err := controller.Submit(ctx)
	if errors.Is(err, form.ErrValidation) {
		return controller.Errors(), err
	}
	return nil, err
}
