package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailyflo/dailyflo/server/auth"
)

func TestAddUser(t *testing.T) {
	s := New()

	require.NoError(t, s.AddUser("alice", "secret"))
	assert.Error(t, s.AddUser("alice", "other"), "duplicate usernames are rejected")
}

func TestAuthenticate(t *testing.T) {
	s := New()
	require.NoError(t, s.AddUser("alice", "secret"))
	ctx := context.Background()

	p, err := s.Authenticate(ctx, auth.Credentials{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "alice", p.ID)

	_, err = s.Authenticate(ctx, auth.Credentials{Username: "alice", Password: "wrong"})
	var aerr *auth.Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, auth.ErrInvalidCredentials, aerr.Type)

	_, err = s.Authenticate(ctx, auth.Credentials{Username: "nobody", Password: "secret"})
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, auth.ErrInvalidCredentials, aerr.Type)
}
