package code

import (
	"errors"
	"fmt"
)

type ErrCode int

const (
	Success ErrCode = 0
)

const (
	UnDefineErr ErrCode = iota + 10000
	ParamErr
	RecordNotFound
	RPCHttpErr
	NotifyActionAlreadyRegistryErr
	NotifySendMsgErr
	UnmarshalWSDataErr
)

// 存储
const (
	StoreReadErr ErrCode = iota + 20000
	StoreWriteErr
	StoreBackendUnknownErr
	MoleculeNotFoundErr
	MoleculeParamEmptyErr
)

// 结构渲染
const (
	EngineUnavailableErr ErrCode = iota + 30000
	EngineAssetErr
	InvalidStructureErr
	InvalidSubStructureErr
	RenderErr
	SurfaceNotFoundErr
	RenderCanceledErr
)

// 外部服务
const (
	CompoundNotFoundErr ErrCode = iota + 40000
	CompoundDataUnavailableErr
	CredentialMissingErr
	UpstreamProxyErr
)

var codeMsgs = map[ErrCode]string{
	Success:                        "success",
	UnDefineErr:                    "undefined error",
	ParamErr:                       "parameter error",
	RecordNotFound:                 "record not found",
	RPCHttpErr:                     "rpc http request error",
	NotifyActionAlreadyRegistryErr: "notify action already registered",
	NotifySendMsgErr:               "notify send message error",
	UnmarshalWSDataErr:             "unmarshal websocket data error",

	StoreReadErr:           "store read error",
	StoreWriteErr:          "store write error",
	StoreBackendUnknownErr: "unknown store backend",
	MoleculeNotFoundErr:    "molecule not found",
	MoleculeParamEmptyErr:  "molecule name and smiles are required",

	EngineUnavailableErr:   "structure engine unavailable",
	EngineAssetErr:         "structure engine asset invalid",
	InvalidStructureErr:    "invalid structure",
	InvalidSubStructureErr: "invalid substructure",
	RenderErr:              "render error",
	SurfaceNotFoundErr:     "drawing surface not found",
	RenderCanceledErr:      "render superseded",

	CompoundNotFoundErr:        "Compound not found",
	CompoundDataUnavailableErr: "Compound data is not available",
	CredentialMissingErr:       "upstream credential is not configured",
	UpstreamProxyErr:           "upstream proxy error",
}

func (e ErrCode) Int() int {
	return int(e)
}

func (e ErrCode) String() string {
	if msg, ok := codeMsgs[e]; ok {
		return msg
	}
	return fmt.Sprintf("unknown error code: %d", int(e))
}

func (e ErrCode) Error() string {
	return e.String()
}

func (e ErrCode) WithMsg(msg string) error {
	return &ErrInfo{Code: e, Msg: msg}
}

func (e ErrCode) WithMsgf(format string, args ...any) error {
	return &ErrInfo{Code: e, Msg: fmt.Sprintf(format, args...)}
}

func (e ErrCode) WithErr(err error) error {
	if err == nil {
		return e
	}
	return &ErrInfo{Code: e, Msg: err.Error(), Err: err}
}

// ErrInfo 携带错误码和附加信息
type ErrInfo struct {
	Code ErrCode
	Msg  string
	Err  error
}

func (e *ErrInfo) Error() string {
	if e.Msg == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code.String(), e.Msg)
}

func (e *ErrInfo) Is(target error) bool {
	c, ok := target.(ErrCode)
	return ok && c == e.Code
}

func (e *ErrInfo) Unwrap() error {
	return e.Err
}

// Parse extracts the error code and the human message of err.
// Errors that carry no code map to UnDefineErr.
func Parse(err error) (ErrCode, string) {
	if err == nil {
		return Success, ""
	}
	var info *ErrInfo
	if errors.As(err, &info) {
		if info.Msg == "" {
			return info.Code, info.Code.String()
		}
		return info.Code, info.Msg
	}
	var c ErrCode
	if errors.As(err, &c) {
		return c, c.String()
	}
	return UnDefineErr, err.Error()
}
