package service

import (
	"context"
	"testing"
	"time"

	"ironhouse/gym-api/internal/domain"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newAuthFixture() (AuthService, *fakeUserRepo, *fakeMemberRepo) {
	users := newFakeUserRepo()
	members := newFakeMemberRepo()
	return NewAuthService(users, members, testSecret, time.Hour), users, members
}

func TestRegister_MemberGetsProfile(t *testing.T) {
	svc, _, members := newAuthFixture()

	user, err := svc.Register(context.Background(), RegisterInput{
		Name: "Alice", Email: " Alice@Example.com ", Password: "s3cret!", Role: domain.RoleMember, Phone: "+1 555 0100",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)

	member, err := members.GetByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "+1 555 0100", member.Phone)
}

func TestRegister_TrainerHasNoMemberProfile(t *testing.T) {
	svc, _, members := newAuthFixture()

	user, err := svc.Register(context.Background(), RegisterInput{
		Name: "Tess", Email: "tess@example.com", Password: "pw", Role: domain.RoleTrainer,
	})
	require.NoError(t, err)
	_, err = members.GetByUserID(context.Background(), user.ID)
	assert.Error(t, err)
}

func TestRegister_Errors(t *testing.T) {
	svc, _, _ := newAuthFixture()
	valid := RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "pw", Role: domain.RoleMember}

	_, err := svc.Register(context.Background(), valid)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), valid)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	admin := valid
	admin.Email = "root@example.com"
	admin.Role = domain.RoleAdmin
	_, err = svc.Register(context.Background(), admin)
	assert.ErrorIs(t, err, ErrInvalidInput)

	missing := valid
	missing.Password = ""
	_, err = svc.Register(context.Background(), missing)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLogin_IssuesTokenWithClaims(t *testing.T) {
	svc, _, _ := newAuthFixture()
	registered, err := svc.Register(context.Background(), RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "pw", Role: domain.RoleMember,
	})
	require.NoError(t, err)

	token, user, err := svc.Login(context.Background(), "ALICE@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Empty(t, user.PasswordHash)

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, registered.ID.Hex(), claims["uid"])
	assert.Equal(t, "member", claims["role"])
	assert.Equal(t, "gym-api", claims["iss"])
}

func TestLogin_Failures(t *testing.T) {
	svc, _, _ := newAuthFixture()
	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "pw", Role: domain.RoleMember,
	})
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	_, _, err = svc.Login(context.Background(), "nobody@example.com", "pw")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	_, _, err = svc.Login(context.Background(), "", "pw")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetUserByID(t *testing.T) {
	svc, _, _ := newAuthFixture()
	registered, err := svc.Register(context.Background(), RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "pw", Role: domain.RoleMember,
	})
	require.NoError(t, err)

	user, err := svc.GetUserByID(context.Background(), registered.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
	assert.Empty(t, user.PasswordHash)

	_, err = svc.GetUserByID(context.Background(), "bogus")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNewAuthService_PanicsWithoutSecret(t *testing.T) {
	assert.Panics(t, func() {
		NewAuthService(newFakeUserRepo(), newFakeMemberRepo(), "", time.Hour)
	})
}
