package config

type StoreBackend string

const (
	StoreFile     StoreBackend = "file"
	StoreRedis    StoreBackend = "redis"
	StorePostgres StoreBackend = "postgres"
)

type Server struct {
	Platform string `mapstructure:"PLATFORM" default:"molbank"`
	Service  string `mapstructure:"SERVICE" default:"api"`
	Port     int    `mapstructure:"WEB_PORT" default:"8080"`
	Env      string `mapstructure:"ENV" default:"dev"`
}

type Log struct {
	LogPath  string `mapstructure:"LOG_PATH" default:"./info.log"`
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
}

type Trace struct {
	Version        string `mapstructure:"TRACE_VERSION" default:"0.0.1"`
	TraceEndpoint  string `mapstructure:"TRACE_TRACEENDPOINT" default:""`
	MetricEndpoint string `mapstructure:"TRACE_METRICENDPOINT" default:""`
	TraceProject   string `mapstructure:"TRACE_TRACEPROJECT" default:""`
	Stdout         bool   `mapstructure:"TRACE_STDOUT" default:"false"`
}

// Redis 为 redis 存储后端和多进程通知共用；Enable 单独打开通知
type Redis struct {
	Enable   bool   `mapstructure:"REDIS_ENABLE" default:"false"`
	Host     string `mapstructure:"REDIS_HOST" default:"127.0.0.1"`
	Port     int    `mapstructure:"REDIS_PORT" default:"6379"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB" default:"0"`
}

type Database struct {
	Host     string `mapstructure:"DATABASE_HOST" default:"localhost"`
	Port     int    `mapstructure:"DATABASE_PORT" default:"5432"`
	Name     string `mapstructure:"DATABASE_NAME" default:"molbank"`
	User     string `mapstructure:"DATABASE_USER" default:"postgres"`
	Password string `mapstructure:"DATABASE_PASSWORD" default:"molbank"`
}

// Store 分子收藏的持久化后端
type Store struct {
	Backend  StoreBackend `mapstructure:"STORE_BACKEND" default:"file"`
	FilePath string       `mapstructure:"STORE_FILE_PATH" default:"./data/local_storage.json"`
	Key      string       `mapstructure:"STORE_KEY" default:"molecules"`
}

type Engine struct {
	AssetPath     string `mapstructure:"ENGINE_ASSET_PATH" default:"static/chunks/app/model/molkit.yaml"`
	RenderPool    int    `mapstructure:"ENGINE_RENDER_POOL" default:"8"`
	MaxDrawPixels int    `mapstructure:"ENGINE_MAX_DRAW_PIXELS" default:"4000000"`
}

type RPC struct {
	PubChem RPCPubChem `mapstructure:",squash"`
	MolMIM  RPCMolMIM  `mapstructure:",squash"`
}

type RPCPubChem struct {
	Addr string `mapstructure:"PUBCHEM_ADDR" default:"https://pubchem.ncbi.nlm.nih.gov"`
}

type RPCMolMIM struct {
	Addr   string `mapstructure:"MOLMIM_ADDR" default:"https://health.api.nvidia.com/v1/biology/nvidia/molmim/generate"`
	APIKey string `mapstructure:"MOLMIM_API_KEY"`
}
