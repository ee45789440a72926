package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/medcamp/models"
	"github.com/Dosada05/medcamp/repositories"
)

func TestUserService_EnsureUser(t *testing.T) {
	store := newMemStore()
	svc := NewUserService(memUsers{store}, nil, OrganizerAccess{Emails: []string{"Boss@Example.com"}, SignupCode: "camp-2026"}, nil)
	ctx := context.Background()

	user, created, err := svc.EnsureUser(ctx, SignUpInput{Email: " Ann@Example.com ", Name: "Ann", Photo: "https://img/ann.png"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "ann@example.com", user.Email)
	assert.Equal(t, models.RoleParticipant, user.Role)

	again, created, err := svc.EnsureUser(ctx, SignUpInput{Email: "ann@example.com", Name: "Other"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Ann", again.Name)

	boss, _, err := svc.EnsureUser(ctx, SignUpInput{
		Email: "boss@example.com", Name: "Boss", Password: "long enough", OrganizerCode: "camp-2026",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleOrganizer, boss.Role)
	assert.NotEmpty(t, boss.PasswordHash)

	_, _, err = svc.EnsureUser(ctx, SignUpInput{Email: "not-an-email"})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, _, err = svc.EnsureUser(ctx, SignUpInput{Email: "short@example.com", Password: "123"})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestUserService_ProfileAccess(t *testing.T) {
	store := newMemStore()
	store.addUser(models.User{Email: "ann@example.com", Name: "Ann", Role: models.RoleParticipant})
	svc := NewUserService(memUsers{store}, nil, OrganizerAccess{}, nil)
	ctx := context.Background()

	_, err := svc.GetUser(ctx, participant("bob@example.com"), "ann@example.com")
	assert.ErrorIs(t, err, ErrForbidden)

	u, err := svc.GetUser(ctx, organizer(), "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ann", u.Name)

	name := "Ann Lee"
	u, err = svc.UpdateProfile(ctx, participant("ann@example.com"), "ann@example.com", models.UserProfilePatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", u.Name)

	blank := " "
	_, err = svc.UpdateProfile(ctx, participant("ann@example.com"), "ann@example.com", models.UserProfilePatch{Name: &blank})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.UpdateProfile(ctx, organizer(), "ann@example.com", models.UserProfilePatch{Name: &name})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.GetUser(ctx, organizer(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_UploadPhoto(t *testing.T) {
	store := newMemStore()
	store.addUser(models.User{Email: "ann@example.com", Name: "Ann"})
	svc := NewUserService(memUsers{store}, &mockUploader{}, OrganizerAccess{}, nil)

	u, err := svc.UploadPhoto(context.Background(), participant("ann@example.com"), "ann@example.com", strings.NewReader("x"), "image/jpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u.Photo, "https://cdn.test/users/ann@example.com/"), u.Photo)
	assert.True(t, strings.HasSuffix(u.Photo, ".jpg"))
}

func TestUserService_Resolve(t *testing.T) {
	store := newMemStore()
	store.addUser(models.User{Email: "ann@example.com", Role: models.RoleParticipant})
	store.addUser(models.User{Email: "late@example.com", Role: models.RoleParticipant, PasswordHash: "hash"})
	store.addUser(models.User{Email: "nopass@example.com", Role: models.RoleParticipant})
	store.addUser(models.User{Email: "legacy@example.com", Role: models.RoleOrganizer})
	svc := NewUserService(memUsers{store}, nil, OrganizerAccess{Emails: []string{"late@example.com", "nopass@example.com"}}, nil)
	ctx := context.Background()

	c, err := svc.Resolve(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleParticipant, c.Role)

	// Configured organizers are promoted even if stored before the setting.
	c, err = svc.Resolve(ctx, "late@example.com")
	require.NoError(t, err)
	assert.True(t, c.IsOrganizer())

	// Без пароля роль организатора не выдается.
	for _, email := range []string{"nopass@example.com", "legacy@example.com"} {
		c, err = svc.Resolve(ctx, email)
		require.NoError(t, err)
		assert.False(t, c.IsOrganizer(), email)
	}

	_, err = svc.Resolve(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestUserService_OrganizerSignup(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		input   SignUpInput
		wantErr error
	}{
		{name: "no password", code: "camp-2026",
			input:   SignUpInput{Email: "boss@camp.org", OrganizerCode: "camp-2026"},
			wantErr: ErrValidationFailed},
		{name: "wrong code", code: "camp-2026",
			input:   SignUpInput{Email: "boss@camp.org", Password: "long enough", OrganizerCode: "guess"},
			wantErr: ErrForbidden},
		{name: "missing code", code: "camp-2026",
			input:   SignUpInput{Email: "boss@camp.org", Password: "long enough"},
			wantErr: ErrForbidden},
		{name: "signup disabled", code: "",
			input:   SignUpInput{Email: "boss@camp.org", Password: "long enough", OrganizerCode: ""},
			wantErr: ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			svc := NewUserService(memUsers{store}, nil, OrganizerAccess{Emails: []string{"boss@camp.org"}, SignupCode: tt.code}, nil)

			_, _, err := svc.EnsureUser(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			_, err = memUsers{store}.GetByEmail(context.Background(), "boss@camp.org")
			assert.ErrorIs(t, err, repositories.ErrUserNotFound, "nothing is stored")
		})
	}
}

func TestSessionService_OrganizerNeedsPassword(t *testing.T) {
	store := newMemStore()
	store.addUser(models.User{Email: "boss@camp.org", Role: models.RoleOrganizer})
	users := NewUserService(memUsers{store}, nil, OrganizerAccess{Emails: []string{"chief@camp.org"}, SignupCode: "camp-2026"}, nil)
	sessions := NewSessionService(memUsers{store}, "test-secret", time.Hour)
	ctx := context.Background()

	_, _, err := sessions.IssueToken(ctx, "boss@camp.org", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = users.EnsureUser(ctx, SignUpInput{Email: "chief@camp.org", Password: "long enough", OrganizerCode: "camp-2026"})
	require.NoError(t, err)

	_, _, err = sessions.IssueToken(ctx, "chief@camp.org", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	token, _, err := sessions.IssueToken(ctx, "chief@camp.org", "long enough")
	require.NoError(t, err)
	email, err := sessions.Verify(token)
	require.NoError(t, err)
	caller, err := users.Resolve(ctx, email)
	require.NoError(t, err)
	assert.True(t, caller.IsOrganizer())
}

func TestSessionService(t *testing.T) {
	store := newMemStore()
	users := NewUserService(memUsers{store}, nil, OrganizerAccess{}, nil)
	ctx := context.Background()
	_, _, err := users.EnsureUser(ctx, SignUpInput{Email: "ann@example.com", Name: "Ann"})
	require.NoError(t, err)
	_, _, err = users.EnsureUser(ctx, SignUpInput{Email: "pw@example.com", Password: "correct horse"})
	require.NoError(t, err)

	sessions := NewSessionService(memUsers{store}, "test-secret", time.Hour)

	token, expires, err := sessions.IssueToken(ctx, "Ann@example.com", "")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	email, err := sessions.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", email)

	_, _, err = sessions.IssueToken(ctx, "ghost@example.com", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = sessions.IssueToken(ctx, "pw@example.com", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = sessions.IssueToken(ctx, "pw@example.com", "correct horse")
	assert.NoError(t, err)

	other := NewSessionService(memUsers{store}, "another-secret", time.Hour)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = sessions.Verify("garbage")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	expired := NewSessionService(memUsers{store}, "test-secret", -time.Minute)
	old, _, err := expired.IssueToken(ctx, "ann@example.com", "")
	require.NoError(t, err)
	_, err = sessions.Verify(old)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
