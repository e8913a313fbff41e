package creations

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/creatorai-backend/internal/domain/creation"
	"github.com/yungbote/creatorai-backend/internal/platform/dbctx"
	"github.com/yungbote/creatorai-backend/internal/platform/logger"
)

// CreationRepo appends generation history. Rows are never updated or deleted.
type CreationRepo interface {
	Create(dbc dbctx.Context, row *creation.Creation) (*creation.Creation, error)
}

type creationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCreationRepo(db *gorm.DB, baseLog *logger.Logger) CreationRepo {
	return &creationRepo{db: db, log: baseLog.With("repo", "CreationRepo")}
}

func (r *creationRepo) Create(dbc dbctx.Context, row *creation.Creation) (*creation.Creation, error) {
	if row == nil {
		return nil, fmt.Errorf("creation row required")
	}
	if strings.TrimSpace(row.UserID) == "" {
		return nil, fmt.Errorf("creation user_id required")
	}
	if row.Type == "" {
		return nil, fmt.Errorf("creation type required")
	}
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		r.log.Error("insert creation failed", "type", string(row.Type), "user_id", row.UserID, "error", err)
		return nil, err
	}
	return row, nil
}
