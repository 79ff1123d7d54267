package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/molbank/pkg/common/code"
)

type Error struct {
	Msg  string   `json:"msg"`
	Info []string `json:"info,omitempty"`
}

type Resp struct {
	Code  code.ErrCode `json:"code"`
	Data  any          `json:"data,omitempty"`
	Error *Error       `json:"error,omitempty"`
}

type RespT[T any] struct {
	Code  code.ErrCode `json:"code"`
	Data  T            `json:"data,omitempty"`
	Error *Error       `json:"error,omitempty"`
}

func ReplyOk(ctx *gin.Context, data ...any) {
	resp := &Resp{Code: code.Success}
	if len(data) > 0 {
		resp.Data = data[0]
	}
	ctx.JSON(http.StatusOK, resp)
}

// ReplyErr 业务错误统一返回 200，错误码放在 body 里
func ReplyErr(ctx *gin.Context, err error, info ...string) {
	c, msg := code.Parse(err)
	ctx.JSON(http.StatusOK, &Resp{
		Code: c,
		Error: &Error{
			Msg:  msg,
			Info: info,
		},
	})
}

func Reply(ctx *gin.Context, err error, data ...any) {
	if err != nil {
		ReplyErr(ctx, err)
		return
	}
	ReplyOk(ctx, data...)
}
