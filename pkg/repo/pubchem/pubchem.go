package pubchem

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/go-viper/mapstructure/v2"
	"github.com/scienceol/molbank/internal/config"
	"github.com/scienceol/molbank/pkg/common/code"
	"github.com/scienceol/molbank/pkg/middleware/logger"
	"github.com/scienceol/molbank/pkg/repo"
)

var properties = []string{
	"MolecularFormula",
	"MolecularWeight",
	"InChIKey",
	"IUPACName",
	"XLogP",
	"ExactMass",
	"MonoisotopicMass",
	"TPSA",
	"Complexity",
	"Charge",
	"HBondDonorCount",
	"HBondAcceptorCount",
	"RotatableBondCount",
	"HeavyAtomCount",
}

// PubChem 返回的数值字段有时是字符串，先按 map 解出再弱类型转换
type PropertyResponse struct {
	PropertyTable struct {
		Properties []map[string]any `json:"Properties"`
	} `json:"PropertyTable"`
}

type pubchemImpl struct {
	client *resty.Client
}

func NewPubChemRepo() repo.PubChemRepo {
	return NewPubChemRepoWithAddr(config.Global().RPC.PubChem.Addr)
}

func NewPubChemRepoWithAddr(baseURL string) repo.PubChemRepo {
	return &pubchemImpl{
		client: resty.New().
			SetTimeout(30*time.Second).
			EnableTrace().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json"),
	}
}

func (p *pubchemImpl) GetCompoundByName(ctx context.Context, name string) (*repo.CompoundProperties, error) {
	urlPath := "/rest/pug/compound/name/{name}/property/{props}/JSON"

	propResp := &PropertyResponse{}
	res, err := p.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"props": strings.Join(properties, ","),
			"name":  name,
		}).
		SetResult(propResp).
		Get(urlPath)
	if err != nil {
		logger.Errorf(ctx, "Failed to request properties from PubChem: %v", err)
		return nil, code.RPCHttpErr.WithErr(err)
	}

	if res.StatusCode() != http.StatusOK {
		logger.Warnf(ctx, "PubChem property query failed name: %s, status: %d", name, res.StatusCode())
		return nil, code.CompoundNotFoundErr
	}

	if len(propResp.PropertyTable.Properties) == 0 {
		return nil, code.CompoundDataUnavailableErr
	}

	data := &repo.CompoundProperties{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           data,
	})
	if err != nil {
		return nil, code.CompoundDataUnavailableErr.WithErr(err)
	}
	if err := decoder.Decode(propResp.PropertyTable.Properties[0]); err != nil {
		logger.Errorf(ctx, "decode PubChem property err: %+v", err)
		return nil, code.CompoundDataUnavailableErr.WithErr(err)
	}
	return data, nil
}
