package molecule

import (
	"github.com/gin-gonic/gin"
	"github.com/scienceol/molbank/pkg/common"
	"github.com/scienceol/molbank/pkg/common/code"
	"github.com/scienceol/molbank/pkg/core/molecule"
	"github.com/scienceol/molbank/pkg/middleware/logger"
)

type Handle struct {
	mService molecule.Service
}

func NewMoleculeHandle(mService molecule.Service) *Handle {
	return &Handle{mService: mService}
}

func (m *Handle) List(ctx *gin.Context) {
	req := &molecule.ListReq{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		logger.Errorf(ctx, "parse List param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := m.mService.Search(ctx, req.Query)
	common.Reply(ctx, err, resp)
}

func (m *Handle) Create(ctx *gin.Context) {
	req := &molecule.AddReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse Create param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := m.mService.Add(ctx, req)
	common.Reply(ctx, err, resp)
}

func (m *Handle) Delete(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		common.ReplyErr(ctx, code.ParamErr, "id is empty")
		return
	}
	if err := m.mService.Remove(ctx, id); err != nil {
		logger.Errorf(ctx, "Remove molecule err: %+v", err)
		common.ReplyErr(ctx, err)
		return
	}
	common.ReplyOk(ctx)
}
