package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/jobfolio/apiserver/internal/auth"
	"github.com/jobfolio/apiserver/internal/store"
	"github.com/jobfolio/apiserver/types"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	createErr error
	created   []types.User
	byEmail   map[string]types.User
	byID      map[int]types.User
	nextID    int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		byEmail: map[string]types.User{},
		byID:    map[int]types.User{},
		nextID:  1,
	}
}

func (f *fakeRepo) Create(_ context.Context, user types.User) (types.User, error) {
	if f.createErr != nil {
		return types.User{}, f.createErr
	}
	if _, exists := f.byEmail[user.Email]; exists {
		return types.User{}, store.ErrDuplicateEmail
	}
	user.ID = f.nextID
	f.nextID++
	f.created = append(f.created, user)
	f.byEmail[user.Email] = user
	f.byID[user.ID] = user
	return user, nil
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int) (types.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	user.PasswordHash = ""
	return user, nil
}

type fakeSaver struct {
	saved   []string
	removed []string
	saveErr error
	n       int
}

func (f *fakeSaver) SaveProfileImage(_ context.Context, _ *multipart.FileHeader) (string, error) {
	return f.save("profile")
}

func (f *fakeSaver) SaveCV(_ context.Context, _ *multipart.FileHeader) (string, error) {
	return f.save("cv")
}

func (f *fakeSaver) save(prefix string) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.n++
	name := fmt.Sprintf("%s-%d.bin", prefix, f.n)
	f.saved = append(f.saved, name)
	return name, nil
}

func (f *fakeSaver) Remove(_ context.Context, filename string) error {
	f.removed = append(f.removed, filename)
	return nil
}

func fileHeader(t *testing.T, field string) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename="f.bin"`, field))
	header.Set("Content-Type", "application/octet-stream")
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("data"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File[field][0]
}

func TestRegister_HashesPassword(t *testing.T) {
	repo := newFakeRepo()
	svc := NewUserService(repo, &fakeSaver{}, nil, nil)

	user, err := svc.Register(context.Background(), Registration{
		FullName: "Alice Doe",
		Email:    "alice@example.com",
		Password: "plaintext-pw",
	})
	require.NoError(t, err)
	require.Equal(t, 1, user.ID)

	stored := repo.created[0]
	require.NotEqual(t, "plaintext-pw", stored.PasswordHash)
	require.True(t, auth.VerifyPassword("plaintext-pw", stored.PasswordHash))
}

func TestRegister_StoresUploadFilenames(t *testing.T) {
	repo := newFakeRepo()
	saver := &fakeSaver{}
	svc := NewUserService(repo, saver, nil, nil)

	user, err := svc.Register(context.Background(), Registration{
		FullName: "Alice Doe",
		Email:    "alice@example.com",
		Password: "pw",
		Image:    fileHeader(t, "image"),
		CV:       fileHeader(t, "cv"),
	})
	require.NoError(t, err)
	require.NotNil(t, user.ProfileImage)
	require.NotNil(t, user.CVFilename)
	require.Len(t, saver.saved, 2)
	require.Empty(t, saver.removed)
}

func TestRegister_RemovesUploadsWhenInsertFails(t *testing.T) {
	repo := newFakeRepo()
	repo.createErr = errors.New("db down")
	saver := &fakeSaver{}
	svc := NewUserService(repo, saver, nil, nil)

	_, err := svc.Register(context.Background(), Registration{
		FullName: "Alice Doe",
		Email:    "alice@example.com",
		Password: "pw",
		Image:    fileHeader(t, "image"),
		CV:       fileHeader(t, "cv"),
	})
	require.Error(t, err)
	require.ElementsMatch(t, saver.saved, saver.removed)
}

func TestRegister_DuplicateEmailPropagates(t *testing.T) {
	repo := newFakeRepo()
	svc := NewUserService(repo, &fakeSaver{}, nil, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, Registration{FullName: "A", Email: "dup@example.com", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, Registration{FullName: "B", Email: "dup@example.com", Password: "pw"})
	require.ErrorIs(t, err, store.ErrDuplicateEmail)
	require.Len(t, repo.created, 1)
}

func TestAuthenticate(t *testing.T) {
	repo := newFakeRepo()
	svc := NewUserService(repo, &fakeSaver{}, nil, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, Registration{FullName: "Alice Doe", Email: "alice@example.com", Password: "right-pw"})
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "alice@example.com", "right-pw")
	require.NoError(t, err)
	require.Empty(t, user.PasswordHash)

	_, wrongPw := svc.Authenticate(ctx, "alice@example.com", "wrong-pw")
	_, unknown := svc.Authenticate(ctx, "nobody@example.com", "right-pw")
	require.ErrorIs(t, wrongPw, ErrInvalidCredentials)
	require.ErrorIs(t, unknown, ErrInvalidCredentials)
	// The two failure modes must be indistinguishable to callers.
	require.Equal(t, wrongPw.Error(), unknown.Error())
}

func TestProfile(t *testing.T) {
	repo := newFakeRepo()
	svc := NewUserService(repo, &fakeSaver{}, nil, nil)
	ctx := context.Background()

	age := 28
	gender := types.GenderFemale
	created, err := svc.Register(ctx, Registration{
		FullName: "Alice Doe",
		Email:    "alice@example.com",
		Password: "pw",
		Age:      &age,
		Gender:   &gender,
	})
	require.NoError(t, err)

	got, err := svc.Profile(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Alice Doe", got.FullName)
	require.Equal(t, "alice@example.com", got.Email)
	require.Equal(t, &age, got.Age)
	require.Equal(t, &gender, got.Gender)
	require.Empty(t, got.PasswordHash)

	_, err = svc.Profile(ctx, 9999)
	require.ErrorIs(t, err, store.ErrNotFound)
}
