package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeUserList(t *testing.T) {
	body := `{"data":{"users":[{"id":"1","name":"a"},{"_id":"2","name":"b"}]},"pagination":{"total":25,"page":2,"limit":10,"pages":3}}`
	users, total, err := DecodeUserList([]byte(body))
	require.NoError(t, err)
	require.Equal(t, 25, total)
	require.Len(t, users, 2)
	require.Equal(t, "2", users[1].ID)
}

func TestDecodeUserList_EmptyPage(t *testing.T) {
	users, total, err := DecodeUserList([]byte(`{"data":{"users":[]},"pagination":{"total":0}}`))
	require.NoError(t, err)
	require.Empty(t, users)
	require.Zero(t, total)
}

func TestDecodeUserList_ShapeMismatch(t *testing.T) {
	cases := map[string]string{
		"not json":           `<html>`,
		"missing data":       `{"pagination":{"total":1}}`,
		"missing users":      `{"data":{},"pagination":{"total":1}}`,
		"null users":         `{"data":{"users":null},"pagination":{"total":1}}`,
		"missing pagination": `{"data":{"users":[]}}`,
		"negative total":     `{"data":{"users":[]},"pagination":{"total":-1}}`,
		"user without id":    `{"data":{"users":[{"name":"x"}]},"pagination":{"total":1}}`,
		"bad role":           `{"data":{"users":[{"id":"1","role":"root"}]},"pagination":{"total":1}}`,
		"users not an array": `{"data":{"users":{}},"pagination":{"total":1}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := DecodeUserList([]byte(body))
			require.ErrorIs(t, err, ErrSchema)
		})
	}
}

func TestDecodeLogin(t *testing.T) {
	res, err := DecodeLogin([]byte(`{"token":"abc","data":{"user":{"id":"1","role":"admin"}}}`))
	require.NoError(t, err)
	require.Equal(t, "abc", res.Token)
	require.Equal(t, "1", res.User.ID)
	require.True(t, res.User.IsAdmin())

	_, err = DecodeLogin([]byte(`{"data":{"user":{"id":"1"}}}`))
	require.ErrorIs(t, err, ErrSchema)

	_, err = DecodeLogin([]byte(`{"token":"abc"}`))
	require.ErrorIs(t, err, ErrSchema)
}

func TestDecodeUser_Envelopes(t *testing.T) {
	cases := map[string]string{
		"data.user": `{"data":{"user":{"id":"7","name":"n"}}}`,
		"data":      `{"data":{"id":"7","name":"n"}}`,
		"user":      `{"user":{"_id":"7","name":"n"}}`,
		"bare":      `{"id":"7","name":"n"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			u, err := DecodeUser([]byte(body))
			require.NoError(t, err)
			require.Equal(t, "7", u.ID)
			require.Equal(t, "n", u.Name)
		})
	}
}

func TestDecodeUser_Rejects(t *testing.T) {
	_, err := DecodeUser([]byte(`{"data":{"name":"no id"}}`))
	require.ErrorIs(t, err, ErrSchema)

	_, err = DecodeUser([]byte(`{"data":{"user":{"id":"1","status":"zombie"}}}`))
	require.ErrorIs(t, err, ErrSchema)

	_, err = DecodeUser([]byte(`[1,2]`))
	require.ErrorIs(t, err, ErrSchema)
}
