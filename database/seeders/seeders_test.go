package seeders

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazarromero/catalog/app/models"
	"github.com/bazarromero/catalog/app/repositories"
	"github.com/bazarromero/catalog/config"
	"github.com/bazarromero/catalog/pkg/auth"
	"github.com/bazarromero/catalog/pkg/database"
)

func TestRunAllSeedsAdminOnce(t *testing.T) {
	t.Cleanup(config.Reset)
	config.Set("ADMIN_USERNAME", "tienda")
	config.Set("ADMIN_PASSWORD", "secreto123")

	name := strings.NewReplacer("/", "_").Replace(t.Name())
	db, err := database.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	ctx := context.Background()
	var out bytes.Buffer
	require.NoError(t, RunAll(ctx, db, &out))
	require.NoError(t, RunAll(ctx, db, &out))
	assert.Contains(t, out.String(), "Running seeder: admin")

	users := repositories.NewGormUserRepository(db)
	n, err := users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	u, err := users.FindByUsername(ctx, "tienda")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(u.Password, "secreto123"))
}
