package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"property-leads/pkg/clients/airtable"
)

type MockAirtableClient struct {
	mock.Mock
}

func (m *MockAirtableClient) CreateRecord(ctx context.Context, table string, fields map[string]interface{}) error {
	args := m.Called(ctx, table, fields)
	return args.Error(0)
}

func TestAirtableCollector_CreatesRecord(t *testing.T) {
	client := new(MockAirtableClient)
	client.On("CreateRecord", mock.Anything, "Leads", mock.MatchedBy(func(f map[string]interface{}) bool {
		return f["firstName"] == "Jane" && f["howSoon"] == "less-than-1-month" && len(f) == 8
	})).Return(nil)

	c := NewAirtableCollector(client, "Leads", zap.NewNop())
	assert.NoError(t, c.Submit(context.Background(), lead))
	client.AssertExpectations(t)
}

func TestAirtableCollector_APIRejectionIsNotAnError(t *testing.T) {
	client := new(MockAirtableClient)
	client.On("CreateRecord", mock.Anything, "Leads", mock.Anything).
		Return(&airtable.APIError{StatusCode: 422, Body: "INVALID_VALUE"})

	c := NewAirtableCollector(client, "Leads", zap.NewNop())
	assert.NoError(t, c.Submit(context.Background(), lead))
}

func TestAirtableCollector_TransportErrorPropagates(t *testing.T) {
	client := new(MockAirtableClient)
	client.On("CreateRecord", mock.Anything, "Leads", mock.Anything).
		Return(errors.New("error creating Airtable record: connection refused"))

	c := NewAirtableCollector(client, "Leads", zap.NewNop())
	assert.Error(t, c.Submit(context.Background(), lead))
}
