package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"practice-service/internal/models"
	"practice-service/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(invitationRequired bool) (*AuthService, *memUsers, *memProgress, *memInvitations) {
	users := newMemUsers()
	progress := newMemProgress()
	invitations := &memInvitations{codes: map[string]string{"WELCOME": ""}}
	tokens := NewTokenService("test-secret", time.Hour)
	return NewAuthService(users, progress, invitations, tokens, nil, invitationRequired), users, progress, invitations
}

func TestRegister_CreatesUserAndProgress(t *testing.T) {
	svc, users, progress, _ := newAuthFixture(false)

	res, err := svc.Register(context.Background(), RegisterInput{
		Email:               "  Ana@Example.com ",
		Password:            "secret1",
		Name:                "Ana",
		LearningSubject:     "french",
		PreferredCategories: []string{"food"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "ana@example.com", res.User.Email)
	assert.NotEqual(t, "secret1", res.User.PasswordHash)

	stored, err := users.FindByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, stored.ID)

	p := progress.get(res.User.ID, "french")
	require.NotNil(t, p)
	for _, typ := range models.ExerciseTypes {
		assert.Equal(t, 1.0, p.SkillLevels[typ])
	}
	assert.Equal(t, []string{"food"}, p.PreferredCategories)
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _, _ := newAuthFixture(false)

	cases := []struct {
		name string
		in   RegisterInput
	}{
		{"bad email", RegisterInput{Email: "nope", Password: "secret1", Name: "A"}},
		{"short password", RegisterInput{Email: "a@b.co", Password: "123", Name: "A"}},
		{"missing name", RegisterInput{Email: "a@b.co", Password: "secret1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.in)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _, _ := newAuthFixture(false)
	in := RegisterInput{Email: "a@b.co", Password: "secret1", Name: "A"}

	_, err := svc.Register(context.Background(), in)
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), in)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_InvitationRequired(t *testing.T) {
	svc, _, _, invitations := newAuthFixture(true)
	ctx := context.Background()
	var verr *ValidationError

	_, err := svc.Register(ctx, RegisterInput{Email: "a@b.co", Password: "secret1", Name: "A"})
	assert.ErrorAs(t, err, &verr)

	_, err = svc.Register(ctx, RegisterInput{Email: "a@b.co", Password: "secret1", Name: "A", InvitationCode: "WELCOME"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", invitations.codes["WELCOME"])

	_, err = svc.Register(ctx, RegisterInput{Email: "b@b.co", Password: "secret1", Name: "B", InvitationCode: "WELCOME"})
	assert.ErrorAs(t, err, &verr, "codes are single use")
}

func TestRegister_FailedCreateReleasesInvitation(t *testing.T) {
	cases := []struct {
		name      string
		createErr error
		want      error
	}{
		{"store failure", errors.New("connection reset"), nil},
		{"concurrent duplicate email", repository.ErrDuplicate, ErrEmailTaken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, users, _, invitations := newAuthFixture(true)
			ctx := context.Background()
			users.createErr = tc.createErr

			_, err := svc.Register(ctx, RegisterInput{Email: "a@b.co", Password: "secret1", Name: "A", InvitationCode: "WELCOME"})
			require.Error(t, err)
			if tc.want != nil {
				assert.ErrorIs(t, err, tc.want)
			}
			assert.Empty(t, invitations.codes["WELCOME"], "code must be usable again")

			users.createErr = nil
			_, err = svc.Register(ctx, RegisterInput{Email: "c@b.co", Password: "secret1", Name: "C", InvitationCode: "WELCOME"})
			require.NoError(t, err)
			assert.Equal(t, "c@b.co", invitations.codes["WELCOME"])
		})
	}
}

func TestLogin(t *testing.T) {
	svc, _, _, _ := newAuthFixture(false)
	ctx := context.Background()
	reg, err := svc.Register(ctx, RegisterInput{Email: "a@b.co", Password: "secret1", Name: "A"})
	require.NoError(t, err)

	res, err := svc.Login(ctx, "a@b.co", "secret1")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, res.User.ID)

	_, err = svc.Login(ctx, "a@b.co", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@b.co", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	me, err := svc.Me(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", me.Email)
}

func TestTokenService(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour)
	user := &models.User{ID: "user-1", Email: "a@b.co"}

	signed, err := tokens.Generate(user)
	require.NoError(t, err)

	claims, err := tokens.Validate(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@b.co", claims.Email)

	_, err = NewTokenService("other-secret", time.Hour).Validate(signed)
	assert.Error(t, err)

	expired, err := NewTokenService("test-secret", -time.Minute).Generate(user)
	require.NoError(t, err)
	_, err = tokens.Validate(expired)
	assert.Error(t, err)

	_, err = tokens.Validate("not.a.token")
	assert.Error(t, err)
}
