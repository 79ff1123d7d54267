package notify

import (
	"context"

	"github.com/scienceol/molbank/pkg/common/uuid"
)

type Action string

const (
	MoleculeModify Action = "molecule-modify"
)

type SendMsg struct {
	Channel   Action    `json:"action"`
	Data      any       `json:"data"`
	UUID      uuid.UUID `json:"uuid"`
	Timestamp int64     `json:"timestamp"`
}

type HandleFunc func(ctx context.Context, msg string) error

type MsgCenter interface {
	Registry(ctx context.Context, msgName Action, handleFunc HandleFunc) error
	Broadcast(ctx context.Context, msg *SendMsg) error
	Close(ctx context.Context) error
}
