package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazarromero/catalog/app/models"
	"github.com/bazarromero/catalog/app/repositories"
	"github.com/bazarromero/catalog/app/requests"
	"github.com/bazarromero/catalog/pkg/apperror"
	"github.com/bazarromero/catalog/pkg/auth"
	"github.com/bazarromero/catalog/pkg/ratelimit"
	"github.com/bazarromero/catalog/pkg/storage"
)

func input(t *testing.T, body string) requests.ProductInput {
	t.Helper()
	var in requests.ProductInput
	require.NoError(t, json.Unmarshal([]byte(body), &in))
	return in
}

func newProductService(t *testing.T) *ProductService {
	t.Helper()
	return NewProductService(repositories.NewFileProductRepository(storage.NewLocal(t.TempDir(), "")))
}

func TestCreateValidatesAndSanitizes(t *testing.T) {
	s := newProductService(t)
	ctx := context.Background()

	_, err := s.Create(ctx, input(t, `{"nombre":"","precio":-1}`))
	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Len(t, apperror.Details(err), 2)

	p, err := s.Create(ctx, input(t, `{"nombre":"  <b>Hola</b>  ","precio":2,"disponible":true}`))
	require.NoError(t, err)
	assert.Equal(t, "bHola/b", p.Nombre)
	assert.True(t, p.Active)
	assert.NotZero(t, p.ID)
}

func TestListVisibility(t *testing.T) {
	s := newProductService(t)
	ctx := context.Background()

	_, err := s.Create(ctx, input(t, `{"nombre":"Visible","precio":1,"disponible":true}`))
	require.NoError(t, err)
	_, err = s.Create(ctx, input(t, `{"nombre":"Agotado","precio":1,"disponible":false}`))
	require.NoError(t, err)
	hidden, err := s.Create(ctx, input(t, `{"nombre":"Oculto","precio":1,"disponible":true}`))
	require.NoError(t, err)
	_, err = s.Deactivate(ctx, hidden.ID)
	require.NoError(t, err)

	public, err := s.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "Visible", public[0].Nombre)

	all, err := s.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestListEmptyIsNotNil(t *testing.T) {
	public, err := newProductService(t).List(context.Background(), false)
	require.NoError(t, err)
	assert.NotNil(t, public)
	assert.Empty(t, public)
}

func TestUpdatePartial(t *testing.T) {
	s := newProductService(t)
	ctx := context.Background()
	p, err := s.Create(ctx, input(t, `{"nombre":"Pan","precio":1,"categoria":"Panadería","disponible":true}`))
	require.NoError(t, err)

	same, err := s.Update(ctx, p.ID, input(t, `{}`))
	require.NoError(t, err)
	assert.Equal(t, p, same)

	_, err = s.Update(ctx, p.ID, input(t, `{"precio":-3}`))
	assert.ErrorIs(t, err, apperror.ErrValidation)

	updated, err := s.Update(ctx, p.ID, input(t, `{"precio":3,"categoria":" <x> "}`))
	require.NoError(t, err)
	assert.Equal(t, 3.0, updated.Precio)
	assert.Equal(t, "x", updated.Categoria)
	assert.Equal(t, "Pan", updated.Nombre)

	_, err = s.Update(ctx, 999, input(t, `{"precio":1}`))
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteUnknown(t *testing.T) {
	s := newProductService(t)
	ctx := context.Background()

	_, err := s.Deactivate(ctx, 5)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = s.Delete(ctx, 5)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestImportCountsRejected(t *testing.T) {
	s := newProductService(t)
	ctx := context.Background()
	_, err := s.Create(ctx, input(t, `{"nombre":"Old","precio":1}`))
	require.NoError(t, err)

	var items []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(`[
		{"nombre":"A","precio":1,"disponible":true},
		{"nombre":"","precio":1},
		{"nombre":"<>","precio":1},
		"not an object",
		{"nombre":"B","precio":"cheap"}
	]`), &items))

	res, err := s.Import(ctx, items)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Accepted: 1, Rejected: 4}, res)

	all, err := s.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "A", all[0].Nombre)
}

type failingRepo struct {
	repositories.ProductRepository
}

func (failingRepo) ListPublic(context.Context) ([]models.Product, error) {
	return nil, errors.New("pq: connection refused to 10.0.0.5")
}

func TestStorageErrorsAreHidden(t *testing.T) {
	s := NewProductService(failingRepo{})
	_, err := s.List(context.Background(), false)

	require.ErrorIs(t, err, apperror.ErrInternal)
	assert.NotContains(t, err.Error(), "10.0.0.5")
}

// ── Auth ─────────────────────────────────────────────────────────────────────

type authFixture struct {
	svc     *AuthService
	users   *repositories.FileUserRepository
	limiter *ratelimit.MemoryLimiter
	tokens  *auth.TokenService
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()
	users := repositories.NewFileUserRepository(storage.NewLocal(t.TempDir(), ""))
	tokens, err := auth.NewTokenService("secret", 0)
	require.NoError(t, err)
	limiter := ratelimit.NewMemoryLimiter(5, 15*time.Minute)
	t.Cleanup(limiter.Stop)

	svc := NewAuthService(users, tokens, limiter)
	created, err := svc.EnsureAdmin(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	require.True(t, created)
	return authFixture{svc: svc, users: users, limiter: limiter, tokens: tokens}
}

func TestEnsureAdminOnlyOnce(t *testing.T) {
	f := newAuthFixture(t)
	created, err := f.svc.EnsureAdmin(context.Background(), "other", "whatever1")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestLoginSuccessIssuesVerifiableToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	token, err := f.svc.Login(ctx, requests.LoginRequest{Username: "admin", Password: "admin123"}, "1.2.3.4")
	require.NoError(t, err)

	id, err := f.svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", id.Username)
	assert.NotZero(t, id.ID)
}

func TestLoginFailuresAreGeneric(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, errUser := f.svc.Login(ctx, requests.LoginRequest{Username: "ghost", Password: "admin123"}, "k")
	_, errPass := f.svc.Login(ctx, requests.LoginRequest{Username: "admin", Password: "wrong-one"}, "k")

	assert.ErrorIs(t, errUser, ErrInvalidCredentials)
	assert.ErrorIs(t, errPass, ErrInvalidCredentials)
	assert.Equal(t, errUser.Error(), errPass.Error())
}

func TestLoginUnknownUserStillComparesHash(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	ghost := requests.LoginRequest{Username: "ghost", Password: "admin123"}

	_, _ = f.svc.Login(ctx, ghost, "k")

	start := time.Now()
	_, err := f.svc.Login(ctx, ghost, "k")
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.GreaterOrEqual(t, elapsed, 5*time.Millisecond, "a miss should pay for a bcrypt compare")
}

func TestLoginFormat(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.Login(context.Background(), requests.LoginRequest{Username: "ab", Password: "123"}, "k")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestLoginSuccessClearsLimiter(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		ok, _ := f.limiter.Check(ctx, "k")
		require.True(t, ok)
	}
	_, err := f.svc.Login(ctx, requests.LoginRequest{Username: "admin", Password: "admin123"}, "k")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		ok, _ := f.limiter.Check(ctx, "k")
		assert.True(t, ok, "attempt %d after clear", i+1)
	}
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	admin, err := f.users.FindByUsername(ctx, "admin")
	require.NoError(t, err)

	err = f.svc.ChangePassword(ctx, admin.ID, requests.ChangePasswordRequest{OldPassword: "nope", NewPassword: "newpass1"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	err = f.svc.ChangePassword(ctx, admin.ID, requests.ChangePasswordRequest{OldPassword: "admin123", NewPassword: "short"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	err = f.svc.ChangePassword(ctx, admin.ID, requests.ChangePasswordRequest{OldPassword: "admin123", NewPassword: "admin123"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	err = f.svc.ChangePassword(ctx, 999, requests.ChangePasswordRequest{OldPassword: "admin123", NewPassword: "newpass1"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	require.NoError(t, f.svc.ChangePassword(ctx, admin.ID, requests.ChangePasswordRequest{OldPassword: "admin123", NewPassword: "newpass1"}))

	_, err = f.svc.Login(ctx, requests.LoginRequest{Username: "admin", Password: "admin123"}, "k")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, requests.LoginRequest{Username: "admin", Password: "newpass1"}, "k")
	assert.NoError(t, err)
}

// ── Images ───────────────────────────────────────────────────────────────────

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

func TestStoreAndOpenImage(t *testing.T) {
	s := NewImageService(storage.NewLocal(t.TempDir(), ""), 0)
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	ctx := context.Background()

	url, err := s.Store(ctx, Upload{Filename: "foto.PNG", ContentType: "image/png", Size: int64(len(pngBytes)), Body: bytes.NewReader(pngBytes)})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/api/images/1700000000000-"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	rc, ct, err := s.Open(ctx, strings.TrimPrefix(url, ImageURLPrefix))
	require.NoError(t, err)
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	assert.Equal(t, pngBytes, got)
	assert.Equal(t, "image/png", ct)
}

func TestStoreDefaultsExtensionFromType(t *testing.T) {
	s := NewImageService(storage.NewLocal(t.TempDir(), ""), 0)
	url, err := s.Store(context.Background(), Upload{Filename: "payload.exe", ContentType: "image/png", Body: bytes.NewReader(pngBytes)})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, ".png"))
}

func TestStoreRejectsBadUploads(t *testing.T) {
	s := NewImageService(storage.NewLocal(t.TempDir(), ""), 32)
	ctx := context.Background()

	_, err := s.Store(ctx, Upload{Filename: "a.txt", ContentType: "text/plain", Body: strings.NewReader("hi")})
	assert.ErrorIs(t, err, ErrImageType)

	_, err = s.Store(ctx, Upload{Filename: "a.png", ContentType: "image/png", Body: strings.NewReader("<html>not an image</html>")})
	assert.ErrorIs(t, err, ErrImageType)

	_, err = s.Store(ctx, Upload{Filename: "a.png", ContentType: "image/png", Size: 64, Body: bytes.NewReader(pngBytes)})
	assert.ErrorIs(t, err, ErrImageTooLarge)

	_, err = s.Store(ctx, Upload{Filename: "a.png", ContentType: "image/png", Body: bytes.NewReader(pngBytes)})
	assert.ErrorIs(t, err, ErrImageTooLarge)
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
}

func TestOpenRejectsTraversal(t *testing.T) {
	s := NewImageService(storage.NewLocal(t.TempDir(), ""), 0)
	for _, name := range []string{"", "..", "../catalog.json", "a/b.png", `a\b.png`, ".hidden"} {
		_, _, err := s.Open(context.Background(), name)
		assert.ErrorIs(t, err, ErrImageNotFound, name)
	}
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "image/jpeg", ContentTypeFor("a.JPEG"))
	assert.Equal(t, "image/webp", ContentTypeFor("a.webp"))
	assert.Equal(t, "application/octet-stream", ContentTypeFor("a.svg"))
}
