// Package store persists registered accounts.
package store

import (
	"context"
	"fmt"

	"github.com/danhigham/telefleet/internal/config"
	"github.com/danhigham/telefleet/internal/domain"
)

// Store is the credential store. Keys it hands out are unique for the
// lifetime of the store and are never reused after deletion.
type Store interface {
	List(ctx context.Context) (map[string]domain.Account, error)
	Get(ctx context.Context, key string) (domain.Account, error)
	Add(ctx context.Context, acc domain.NewAccount) (string, error)
	Update(ctx context.Context, key string, fn func(*domain.Account)) error
	Delete(ctx context.Context, key string) (bool, error)
	Close() error
}

// Open returns the backend selected by driver.
func Open(driver, path string) (Store, error) {
	switch driver {
	case config.DriverJSON, "":
		return NewJSONStore(path)
	case config.DriverSQLite:
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

func newRecord(n int, acc domain.NewAccount) domain.Account {
	return domain.Account{
		Key:       domain.FormatKey(n),
		ID:        n,
		APIHash:   acc.APIHash,
		APIID:     acc.APIID,
		Phone:     acc.Phone,
		Session:   acc.Session,
		FirstName: acc.FirstName,
		LastName:  acc.LastName,
		Username:  acc.Username,
		AccountID: acc.AccountID,
	}
}
