package molmim

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/scienceol/molbank/internal/config"
	"github.com/scienceol/molbank/pkg/common/code"
	"github.com/scienceol/molbank/pkg/middleware/logger"
	"github.com/scienceol/molbank/pkg/repo"
)

type molmimImpl struct {
	addr   string
	apiKey string
	client *resty.Client
}

func NewMolMIMRepo() repo.MolMIMRepo {
	conf := config.Global().RPC.MolMIM
	return New(conf.Addr, conf.APIKey)
}

func New(addr, apiKey string) repo.MolMIMRepo {
	return &molmimImpl{
		addr:   addr,
		apiKey: apiKey,
		client: resty.New().
			SetTimeout(60*time.Second).
			EnableTrace().
			SetHeader("Accept", "application/json").
			SetHeader("Content-Type", "application/json"),
	}
}

func (m *molmimImpl) Generate(ctx context.Context, body []byte) (*repo.UpstreamResponse, error) {
	if m.apiKey == "" {
		return nil, code.CredentialMissingErr
	}
	res, err := m.client.R().
		SetContext(ctx).
		SetAuthToken(m.apiKey).
		SetBody(body).
		Post(m.addr)
	if err != nil {
		logger.Errorf(ctx, "molmim request err: %+v", err)
		return nil, code.UpstreamProxyErr.WithErr(err)
	}
	if res.IsError() {
		logger.Warnf(ctx, "molmim reply status: %d", res.StatusCode())
	}
	return &repo.UpstreamResponse{
		Status: res.StatusCode(),
		Body:   res.Body(),
	}, nil
}
