package users

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/profilekit/profilekit/internal/common"
	"github.com/profilekit/profilekit/internal/models"
	"github.com/profilekit/profilekit/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const goodPassword = "Secr3t!pass"

func newTestService() (*Service, *MemoryUserRepository) {
	repo := NewMemoryUserRepository()
	svc := NewService(repo, nil)
	svc.cost = bcrypt.MinCost
	return svc, repo
}

func TestSignup_StoresLowercaseEmailAndHash(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	u, err := svc.Signup(ctx, SignupInput{Name: "Ada Lovelace", Email: "Ada@Example.COM", Password: goodPassword})
	require.NoError(t, err)
	assert.False(t, u.ID.IsZero())
	assert.Equal(t, "ada@example.com", u.Email)
	assert.NotEqual(t, goodPassword, u.PasswordHash)
	assert.False(t, u.CreatedAt.IsZero())

	stored, err := repo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, u.ID, stored.ID)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, err := svc.Signup(ctx, SignupInput{Name: "Ada", Email: "ada@example.com", Password: goodPassword})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, SignupInput{Name: "Other", Email: "ADA@example.com", Password: goodPassword})
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestSignup_Validation(t *testing.T) {
	svc, _ := newTestService()
	cases := []struct {
		name  string
		in    SignupInput
		field string
	}{
		{"missing fields", SignupInput{Name: "Ada"}, ""},
		{"digits in name", SignupInput{Name: "Ada99", Email: "a@b.co", Password: goodPassword}, "name"},
		{"one letter name", SignupInput{Name: "A", Email: "a@b.co", Password: goodPassword}, "name"},
		{"bad email", SignupInput{Name: "Ada", Email: "not-an-email", Password: goodPassword}, "email"},
		{"short password", SignupInput{Name: "Ada", Email: "a@b.co", Password: "Sh0rt!"}, "password"},
		{"space in password", SignupInput{Name: "Ada", Email: "a@b.co", Password: "Has Space1!"}, "password"},
		{"no special", SignupInput{Name: "Ada", Email: "a@b.co", Password: "NoSpecial11"}, "password"},
		{"no upper", SignupInput{Name: "Ada", Email: "a@b.co", Password: "lower11!!"}, "password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Signup(context.Background(), tc.in)
			ve, ok := common.AsValidation(err)
			require.True(t, ok, "expected validation error, got %v", err)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	created, err := svc.Signup(ctx, SignupInput{Name: "Ada", Email: "ada@example.com", Password: goodPassword})
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, " ADA@example.com ", goodPassword)
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)

	_, err = svc.Authenticate(ctx, "ada@example.com", "Wrong1!pass")
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = svc.Authenticate(ctx, "nobody@example.com", goodPassword)
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = svc.Authenticate(ctx, "", "")
	_, isValidation := common.AsValidation(err)
	assert.True(t, isValidation)
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Get(context.Background(), "64b000000000000000000000")
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = svc.Get(context.Background(), "not-an-object-id")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	u, err := svc.Signup(ctx, SignupInput{Name: "Ada", Email: "ada@example.com", Password: goodPassword})
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, u.Subject(), "Ada King", &models.Avatar{URL: "https://cdn/a.png", PublicID: "avatars/a.png"})
	require.NoError(t, err)
	assert.Equal(t, "Ada King", updated.Name)
	assert.Equal(t, "https://cdn/a.png", updated.PictureURL())

	again, err := svc.UpdateProfile(ctx, u.Subject(), "Ada", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/a.png", again.PictureURL(), "avatar kept when no picture given")

	_, err = svc.UpdateProfile(ctx, u.Subject(), "R2D2", nil)
	_, isValidation := common.AsValidation(err)
	assert.True(t, isValidation)
}

type recordingBlobs struct {
	deleted []string
}

func (r *recordingBlobs) Put(_ context.Context, key string, _ io.Reader, size int64, contentType string) (*storage.Object, error) {
	return &storage.Object{Key: key, ContentType: contentType, Size: size}, nil
}

func (r *recordingBlobs) Delete(_ context.Context, key string) error {
	r.deleted = append(r.deleted, key)
	return nil
}

func (r *recordingBlobs) Ping(context.Context) error { return nil }

func TestUpdateProfile_RemovesReplacedAvatar(t *testing.T) {
	blobs := &recordingBlobs{}
	repo := NewMemoryUserRepository()
	svc := NewService(repo, blobs)
	svc.cost = bcrypt.MinCost
	ctx := context.Background()
	u, err := svc.Signup(ctx, SignupInput{Name: "Ada", Email: "ada@example.com", Password: goodPassword})
	require.NoError(t, err)
	own := func(name string) *models.Avatar {
		key := "avatars/" + u.Subject() + "/" + name
		return &models.Avatar{URL: "https://cdn/" + key, PublicID: key}
	}

	_, err = svc.UpdateProfile(ctx, u.Subject(), "Ada", own("first.png"))
	require.NoError(t, err)
	assert.Empty(t, blobs.deleted, "nothing to replace yet")

	_, err = svc.UpdateProfile(ctx, u.Subject(), "Ada", own("first.png"))
	require.NoError(t, err)
	assert.Empty(t, blobs.deleted, "same object kept")

	_, err = svc.UpdateProfile(ctx, u.Subject(), "Ada", own("second.png"))
	require.NoError(t, err)
	assert.Equal(t, []string{"avatars/" + u.Subject() + "/first.png"}, blobs.deleted)

	// objects outside the user's prefix are never removed
	_, err = svc.UpdateProfile(ctx, u.Subject(), "Ada", &models.Avatar{URL: "https://cdn/x", PublicID: "avatars/someone-else/x.png"})
	require.NoError(t, err)
	_, err = svc.UpdateProfile(ctx, u.Subject(), "Ada", own("third.png"))
	require.NoError(t, err)
	assert.Len(t, blobs.deleted, 2)
	assert.Equal(t, "avatars/"+u.Subject()+"/second.png", blobs.deleted[1])
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	u, err := svc.Signup(ctx, SignupInput{Name: "Ada", Email: "ada@example.com", Password: goodPassword})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, u.Subject(), "Wrong1!pass", "N3w!password")
	assert.True(t, errors.Is(err, common.ErrUnauthorized))

	err = svc.ChangePassword(ctx, u.Subject(), goodPassword, "weak")
	_, isValidation := common.AsValidation(err)
	assert.True(t, isValidation)

	require.NoError(t, svc.ChangePassword(ctx, u.Subject(), goodPassword, "N3w!password"))
	_, err = svc.Authenticate(ctx, "ada@example.com", "N3w!password")
	assert.NoError(t, err)
	_, err = svc.Authenticate(ctx, "ada@example.com", goodPassword)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}
