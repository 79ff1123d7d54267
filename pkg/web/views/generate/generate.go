package generate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/molbank/pkg/common/code"
	"github.com/scienceol/molbank/pkg/middleware/logger"
	"github.com/scienceol/molbank/pkg/repo"
)

// Handle 代理 MolMIM 生成接口，错误体保持 {"error": "..."} 格式
type Handle struct {
	molmim repo.MolMIMRepo
}

func NewGenerateHandle(molmim repo.MolMIMRepo) *Handle {
	return &Handle{molmim: molmim}
}

func replyError(ctx *gin.Context, status int, msg string) {
	ctx.JSON(status, gin.H{"error": msg})
}

func (h *Handle) Generate(ctx *gin.Context) {
	body, err := io.ReadAll(ctx.Request.Body)
	if err != nil || !json.Valid(body) {
		logger.Errorf(ctx, "parse Generate body err: %+v", err)
		replyError(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	res, err := h.molmim.Generate(ctx, body)
	if errors.Is(err, code.CredentialMissingErr) {
		replyError(ctx, http.StatusInternalServerError, "MolMIM API key is not configured")
		return
	}
	if err != nil {
		logger.Errorf(ctx, "Generate proxy err: %+v", err)
		replyError(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}

	if res.Status < http.StatusOK || res.Status >= http.StatusMultipleChoices {
		replyError(ctx, res.Status, fmt.Sprintf("MolMIM API error: %d - %s", res.Status, string(res.Body)))
		return
	}
	if !json.Valid(res.Body) {
		logger.Errorf(ctx, "Generate upstream body is not json")
		replyError(ctx, http.StatusInternalServerError, "Internal server error")
		return
	}
	ctx.Data(http.StatusOK, "application/json; charset=utf-8", res.Body)
}
