package creations

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/creatorai-backend/internal/data/repos/testutil"
	"github.com/yungbote/creatorai-backend/internal/domain/creation"
	"github.com/yungbote/creatorai-backend/internal/platform/dbctx"
)

func TestCreateIssuesParameterizedInsert(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "creations" ("user_id","prompt","content","type","publish","created_at") VALUES ($1,$2,$3,$4,$5,$6) RETURNING "id"`)).
		WithArgs("user_1", "Write about Go", "Go is ...", "article", false, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectCommit()

	repo := NewCreationRepo(gdb, testutil.Logger(t))
	row, err := repo.Create(dbctx.Context{Ctx: context.Background()}, &creation.Creation{
		UserID:  "user_1",
		Prompt:  "Write about Go",
		Content: "Go is ...",
		Type:    creation.TypeArticle,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 42, row.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePersistsRow(t *testing.T) {
	db := testutil.DB(t)
	repo := NewCreationRepo(db, testutil.Logger(t))

	_, err := repo.Create(dbctx.Context{Ctx: context.Background()}, &creation.Creation{
		UserID:  "user_2",
		Prompt:  "a lighthouse at dusk",
		Content: "https://res.cloudinary.com/demo/image/upload/v1/x.png",
		Type:    creation.TypeImage,
		Publish: true,
	})
	require.NoError(t, err)

	rows := testutil.Creations(t, db, "user_2")
	require.Len(t, rows, 1)
	assert.Equal(t, creation.TypeImage, rows[0].Type)
	assert.True(t, rows[0].Publish)
	assert.False(t, rows[0].CreatedAt.IsZero())
}

func TestCreateInsideTransaction(t *testing.T) {
	db := testutil.DB(t)
	repo := NewCreationRepo(db, testutil.Logger(t))

	tx := db.Begin()
	require.NoError(t, tx.Error)
	_, err := repo.Create(dbctx.Context{Ctx: context.Background(), Tx: tx}, &creation.Creation{
		UserID: "user_3", Prompt: "p", Content: "c", Type: creation.TypeBlogTitle,
	})
	require.NoError(t, err)
	require.NoError(t, tx.Rollback().Error)

	assert.Empty(t, testutil.Creations(t, db, "user_3"))
}

func TestCreateValidatesRow(t *testing.T) {
	repo := NewCreationRepo(testutil.DB(t), testutil.Logger(t))
	_, err := repo.Create(dbctx.Context{Ctx: context.Background()}, &creation.Creation{Type: creation.TypeArticle})
	require.Error(t, err)
	_, err = repo.Create(dbctx.Context{Ctx: context.Background()}, nil)
	require.Error(t, err)
}
