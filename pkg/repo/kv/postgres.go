package kv

import (
	"context"
	"errors"

	"github.com/scienceol/molbank/pkg/common/code"
	"github.com/scienceol/molbank/pkg/common/uuid"
	"github.com/scienceol/molbank/pkg/middleware/db"
	"github.com/scienceol/molbank/pkg/repo"
	"github.com/scienceol/molbank/pkg/repo/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type postgresStore struct {
	*db.Datastore
}

func NewPostgres(d *db.Datastore) repo.KVStore {
	return &postgresStore{Datastore: d}
}

func (p *postgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	data := &model.KVEntry{}
	if err := p.DBWithContext(ctx).Where("key = ?", key).Take(data).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.RecordNotFound.WithMsgf("key: %s", key)
		}
		return nil, code.StoreReadErr.WithErr(err)
	}
	return []byte(data.Value), nil
}

func (p *postgresStore) Set(ctx context.Context, key string, value []byte) error {
	data := &model.KVEntry{
		BaseModel: model.BaseModel{UUID: uuid.NewV4()},
		Key:       key,
		Value:     datatypes.JSON(value),
	}
	statement := p.DBWithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(data)
	if statement.Error != nil {
		return code.StoreWriteErr.WithErr(statement.Error)
	}
	return nil
}

func (p *postgresStore) Delete(ctx context.Context, key string) error {
	if err := p.DBWithContext(ctx).Where("key = ?", key).Delete(&model.KVEntry{}).Error; err != nil {
		return code.StoreWriteErr.WithErr(err)
	}
	return nil
}
