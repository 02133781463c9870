package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/storecogs/pkg/db/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type widget struct {
	ID        int64  `gorm:"primaryKey"`
	Code      string `gorm:"uniqueIndex"`
	Name      string
	CreatedAt time.Time
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&widget{}))
	return conn
}

func TestStoreCRUD(t *testing.T) {
	ctx := context.Background()
	repo := ProvideStore[widget](setupDB(t))

	require.NoError(t, repo.BatchCreate(ctx, []*widget{
		{ID: 1, Code: "a", Name: "Alpha"},
		{ID: 2, Code: "b", Name: "Beta"},
		{ID: 3, Code: "c", Name: "Gamma"},
	}))

	found, err := repo.FindOne(ctx, &widget{Code: "b"})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Beta", found.Name)

	missing, err := repo.FindOne(ctx, &widget{Code: "z"})
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := repo.Find(ctx, nil, option.WithOrder("id desc"), option.WithLimit(2))
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, int64(3), all[0].ID)

	count, err := repo.Count(ctx, nil, option.WithWhere("name LIKE ?", "%a%"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	require.NoError(t, repo.Update(ctx, "2", map[string]any{"name": "Bravo"}))
	found, err = repo.FindOne(ctx, &widget{ID: 2})
	require.NoError(t, err)
	assert.Equal(t, "Bravo", found.Name)

	n, err := repo.Delete(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestStoreWithTrxRollsBack(t *testing.T) {
	ctx := context.Background()
	conn := setupDB(t)
	repo := ProvideStore[widget](conn)

	err := conn.Transaction(func(tx *gorm.DB) error {
		if err := repo.WithTrx(tx).Create(ctx, &widget{ID: 9, Code: "x"}); err != nil {
			return err
		}
		return repo.WithTrx(tx).Create(ctx, &widget{ID: 10, Code: "x"})
	})
	require.Error(t, err)

	count, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestStoreUpdateAllWritesZeroValues(t *testing.T) {
	ctx := context.Background()
	repo := ProvideStore[widget](setupDB(t))
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, &widget{ID: 1, Code: "a", Name: "Alpha", CreatedAt: created}))

	require.NoError(t, repo.UpdateAll(ctx, &widget{ID: 1, Code: "a"}, "created_at"))

	found, err := repo.FindOne(ctx, &widget{ID: 1})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "", found.Name)
	assert.True(t, found.CreatedAt.Equal(created))
}
