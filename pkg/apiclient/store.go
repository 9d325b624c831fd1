package apiclient

import (
	"context"

	"github.com/salestrack/sales-tracker-api/internal/domain"
)

// RemoteSalesStore reads sales through the API so a report can be built away
// from the database.
type RemoteSalesStore struct {
	client *Client
}

func NewRemoteSalesStore(client *Client) *RemoteSalesStore {
	return &RemoteSalesStore{client: client}
}

func (s *RemoteSalesStore) ListSales(ctx context.Context, filters domain.SaleFilters) ([]*domain.Sale, error) {
	listing, err := s.client.ListSales(ctx, filters)
	if err != nil {
		return nil, err
	}
	return listing.Sales, nil
}
