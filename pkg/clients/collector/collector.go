// Package collector forwards leads to the external data-collection endpoint.
//
// Collectors are send-and-forget: whatever the endpoint answers is drained and
// ignored, and only a failed round trip is an error. A misconfigured or
// rejecting endpoint therefore still counts as a successful submission.
package collector

import (
	"context"

	"property-leads/pkg/models"
)

// Client defines the interface for delivering a lead to a collector
type Client interface {
	Submit(ctx context.Context, payload models.LeadPayload) error
}
