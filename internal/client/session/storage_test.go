package session

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/dmitrijs2005/useradmin/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/useradmin/internal/common"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStorage_SaveLoadClear(t *testing.T) {
	st := newStorage(t)
	ctx := context.Background()

	token, user, err := st.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, token)
	require.Nil(t, user)

	u := models.User{ID: "1", Name: "Ann", Role: models.RoleAdmin, ProfilePhoto: &models.ProfilePhoto{Name: "a.png", URL: "u"}}
	require.NoError(t, st.Save(ctx, "tok", u))

	token, user, err = st.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "tok", token)
	require.Equal(t, &u, user)

	require.NoError(t, st.Clear(ctx))
	token, user, err = st.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, token)
	require.Nil(t, user)
}

func TestSQLiteStorage_CorruptUserKeepsToken(t *testing.T) {
	st := newStorage(t)
	ctx := context.Background()

	repo := metadata.NewSQLiteRepository(st.db)
	require.NoError(t, repo.Set(ctx, common.TokenStorageKey, []byte("tok")))
	require.NoError(t, repo.Set(ctx, common.UserStorageKey, []byte("{not json")))

	token, user, err := st.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "tok", token)
	require.Nil(t, user)
}
