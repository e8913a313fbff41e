package domain

import (
	"github.com/yungbote/creatorai-backend/internal/domain/creation"
)

// Models lists every persisted model, in migration order.
func Models() []any {
	return []any{
		&creation.Creation{},
	}
}
