// Package users persists the ordered list of user records. Three backends
// share one contract: a JSON file, a JSON object in S3, and a SQL table
// (PostgreSQL or SQLite).
package users

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/fileshare/internal/common"
	"github.com/dmitrijs2005/fileshare/internal/server/models"
)

// Repository loads and saves the whole user sequence.
//
// Load initializes an absent store to an empty sequence. Malformed or
// unreadable data is reported wrapped in common.ErrorStorage. Save replaces
// the stored sequence; failures also wrap common.ErrorStorage.
type Repository interface {
	Load(ctx context.Context) ([]models.UserRecord, error)
	Save(ctx context.Context, records []models.UserRecord) error
}

func encodeRecords(records []models.UserRecord) ([]byte, error) {
	if records == nil {
		records = []models.UserRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: encode users: %w", common.ErrorStorage, err)
	}
	return data, nil
}

func decodeRecords(data []byte) ([]models.UserRecord, error) {
	var records []models.UserRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: decode users: %w", common.ErrorStorage, err)
	}
	if records == nil {
		records = []models.UserRecord{}
	}
	return records, nil
}
