package session

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/dmitrijs2005/useradmin/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/useradmin/internal/common"
	"github.com/dmitrijs2005/useradmin/internal/dbx"
)

// Storage persists the token together with the last known user.
type Storage interface {
	// Load returns an empty token when nothing is stored. user is nil when
	// it is missing or unreadable.
	Load(ctx context.Context) (token string, user *models.User, err error)
	Save(ctx context.Context, token string, user models.User) error
	Clear(ctx context.Context) error
}

// SQLiteStorage keeps the session in the metadata table.
type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(db *sql.DB) *SQLiteStorage {
	return &SQLiteStorage{db: db}
}

func (s *SQLiteStorage) Load(ctx context.Context) (string, *models.User, error) {
	var token, user []byte
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		var err error
		if token, err = repo.Get(ctx, common.TokenStorageKey); err != nil {
			return err
		}
		user, err = repo.Get(ctx, common.UserStorageKey)
		return err
	})
	if err != nil || len(token) == 0 {
		return "", nil, err
	}

	var u models.User
	if len(user) == 0 || json.Unmarshal(user, &u) != nil || u.ID == "" {
		return string(token), nil, nil
	}
	return string(token), &u, nil
}

func (s *SQLiteStorage) Save(ctx context.Context, token string, user models.User) error {
	b, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.TokenStorageKey, []byte(token)); err != nil {
			return err
		}
		return repo.Set(ctx, common.UserStorageKey, b)
	})
}

func (s *SQLiteStorage) Clear(ctx context.Context) error {
	return metadata.NewSQLiteRepository(s.db).Delete(ctx, common.TokenStorageKey, common.UserStorageKey)
}
