package migrate

import (
	"context"

	"github.com/scienceol/molbank/pkg/common/code"
	"github.com/scienceol/molbank/pkg/middleware/db"
	"github.com/scienceol/molbank/pkg/middleware/logger"
	"github.com/scienceol/molbank/pkg/repo/model"
)

func Table(ctx context.Context) error {
	d := db.DB()
	if d == nil {
		return code.StoreBackendUnknownErr.WithMsg("postgres not initialized")
	}
	models := []any{
		&model.KVEntry{},
	}
	for _, m := range models {
		if err := d.DBWithContext(ctx).AutoMigrate(m); err != nil {
			logger.Errorf(ctx, "migrate table err: %+v", err)
			return err
		}
	}
	return nil
}
