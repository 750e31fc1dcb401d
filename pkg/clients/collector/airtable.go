package collector

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"property-leads/pkg/clients/airtable"
	"property-leads/pkg/models"
)

type airtableCollector struct {
	client airtable.Client
	table  string
	logger *zap.Logger
}

// NewAirtableCollector creates a collector that appends each lead as a
// record of table
func NewAirtableCollector(client airtable.Client, table string, logger *zap.Logger) Client {
	return &airtableCollector{
		client: client,
		table:  table,
		logger: logger,
	}
}

func (c *airtableCollector) Submit(ctx context.Context, payload models.LeadPayload) error {
	record := map[string]interface{}{
		"firstName":       payload.FirstName,
		"lastName":        payload.LastName,
		"phoneNumber":     payload.PhoneNumber,
		"emailAddress":    payload.EmailAddress,
		"propertyAddress": payload.PropertyAddress,
		"planningSelling": payload.PlanningSelling,
		"howSoon":         payload.HowSoon,
		"timestamp":       payload.Timestamp,
	}

	err := c.client.CreateRecord(ctx, c.table, record)

	// Rejections by the API are not surfaced to the user, same as the webhook.
	var apiErr *airtable.APIError
	if errors.As(err, &apiErr) {
		c.logger.Warn("Airtable rejected lead",
			zap.String("table", c.table),
			zap.Int("status", apiErr.StatusCode))
		return nil
	}
	return err
}
