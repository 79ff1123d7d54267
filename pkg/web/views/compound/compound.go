package compound

import (
	"github.com/gin-gonic/gin"
	"github.com/scienceol/molbank/pkg/common"
	"github.com/scienceol/molbank/pkg/common/code"
	"github.com/scienceol/molbank/pkg/core/compound"
	"github.com/scienceol/molbank/pkg/middleware/logger"
)

type Handle struct {
	cService compound.Service
}

func NewCompoundHandle(cService compound.Service) *Handle {
	return &Handle{cService: cService}
}

func (c *Handle) Lookup(ctx *gin.Context) {
	name := ctx.Param("name")
	if name == "" {
		common.ReplyErr(ctx, code.ParamErr, "name is empty")
		return
	}
	resp, err := c.cService.Lookup(ctx, name)
	if err != nil {
		logger.Warnf(ctx, "Lookup compound err: %+v", err)
	}
	common.Reply(ctx, err, resp)
}
