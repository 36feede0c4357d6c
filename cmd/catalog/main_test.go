package main

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazarromero/catalog/app/models"
	"github.com/bazarromero/catalog/app/repositories"
	"github.com/bazarromero/catalog/pkg/database"
	"github.com/bazarromero/catalog/pkg/storage"
)

func TestGenerateCredentials(t *testing.T) {
	creds, err := generateCredentials([]string{"https://a.example", "https://b.example"})
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{128}$`), creds.JWTSecret)
	assert.Regexp(t, regexp.MustCompile(`^bazar_[0-9a-z]{6}$`), creds.Username)
	assert.Regexp(t, regexp.MustCompile(`^MiTienda[0-9a-z]{4}2025!$`), creds.Password)
	assert.Equal(t, "https://a.example,https://b.example", creds.AllowedOrigins)

	other, err := generateCredentials(nil)
	require.NoError(t, err)
	assert.NotEqual(t, creds.JWTSecret, other.JWTSecret)
}

func TestEnvFileParses(t *testing.T) {
	creds, err := generateCredentials(defaultProductionOrigins)
	require.NoError(t, err)

	env, err := godotenv.Unmarshal(creds.envFile())
	require.NoError(t, err)
	assert.Equal(t, creds.JWTSecret, env["JWT_SECRET"])
	assert.Equal(t, creds.Username, env["ADMIN_USERNAME"])
	assert.Equal(t, creds.Password, env["ADMIN_PASSWORD"])
	assert.Equal(t, creds.AllowedOrigins, env["ALLOWED_ORIGINS"])
}

func TestRouteListPrintsAPI(t *testing.T) {
	var out bytes.Buffer
	routeListCmd.SetOut(&out)
	require.NoError(t, routeListCmd.RunE(routeListCmd, nil))

	for _, want := range []string{"/api/products/{id}/hard", "/api/auth/login", "/api/upload-image", "/metrics", "/health"} {
		assert.Contains(t, out.String(), want)
	}
}

func TestSyncToDatabaseKeepsIDs(t *testing.T) {
	ctx := context.Background()
	disk := storage.NewLocal(t.TempDir(), "")

	products := repositories.NewFileProductRepository(disk)
	_, err := products.ReplaceAll(ctx, []models.Product{
		{Nombre: "Uno", Precio: 1, Active: true},
		{Nombre: "Dos", Precio: 2, Active: false},
	})
	require.NoError(t, err)
	_, err = repositories.NewFileUserRepository(disk).Create(ctx, models.User{Username: "admin", Password: "hash"})
	require.NoError(t, err)

	name := strings.NewReplacer("/", "_").Replace(t.Name())
	db, err := database.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.User{}))

	res, err := syncToDatabase(ctx, disk, db)
	require.NoError(t, err)
	assert.Equal(t, syncResult{Products: 2, Users: 1}, res)

	// Running twice updates instead of duplicating.
	_, err = syncToDatabase(ctx, disk, db)
	require.NoError(t, err)

	all, err := repositories.NewGormProductRepository(db).ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Dos", all[1].Nombre)
	assert.False(t, all[1].Active)

	stored, err := products.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, stored[0].ID, all[0].ID)
}
