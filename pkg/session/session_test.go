package session_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mespms/clinicalforms/pkg/session"
)

func TestUser_Display(t *testing.T) {
	u := session.User{FirstName: "maria", LastName: "Santos", Email: "m@clinic.ph", Role: session.RoleAdmin}
	require.Equal(t, "maria Santos", u.DisplayName())
	require.Equal(t, "MS", u.Initials())
	require.True(t, u.IsAdmin())

	anon := session.User{Email: "staff@clinic.ph", Role: session.RoleStaff}
	require.Equal(t, "staff@clinic.ph", anon.DisplayName())
	require.Empty(t, anon.Initials())
	require.False(t, anon.IsAdmin())
}

func TestSession_FileStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := session.FileStore{Path: path}

	s := session.New(store)
	require.ErrorIs(t, s.Load(ctx), session.ErrNoSession)
	require.False(t, s.Authenticated())

	user := session.User{ID: 3, FirstName: "Jose", LastName: "Rizal", Role: session.RolePractitioner}
	require.NoError(t, s.Begin(ctx, user))

	restored := session.New(store)
	require.NoError(t, restored.Load(ctx))
	got, err := restored.User()
	require.NoError(t, err)
	require.Equal(t, user, got)

	require.NoError(t, restored.Clear(ctx))
	_, err = restored.User()
	require.ErrorIs(t, err, session.ErrNoSession)
	require.ErrorIs(t, session.New(store).Load(ctx), session.ErrNoSession)
}

func TestSession_RejectsUnknownRole(t *testing.T) {
	s := session.New(nil)
	require.Error(t, s.Begin(context.Background(), session.User{Role: "OWNER"}))
	require.False(t, s.Authenticated())
}
