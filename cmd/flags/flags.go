package flags

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ruteri/ssh-key-server/api"
	"github.com/ruteri/ssh-key-server/common"
	"github.com/ruteri/ssh-key-server/config"
	"github.com/urfave/cli/v2"
)

const envPrefix = "KEYSERVER_"

// ConfigBaseName is the base name of the YAML files looked up in the config dir.
const ConfigBaseName = "keyserver"

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	return NewLogger(config.LogSettings{
		JSON:    cCtx.Bool(LogJsonFlag.Name),
		Debug:   cCtx.Bool(LogDebugFlag.Name),
		Service: cCtx.String("log-service"),
	}, cCtx.Bool(LogUidFlag.Name))
}

func NewLogger(settings config.LogSettings, logUID bool) *slog.Logger {
	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   settings.Debug,
		JSON:    settings.JSON,
		Service: settings.Service,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

// LoadSettings layers the flag defaults, the YAML files found in the config
// dir and the flags that were set explicitly, in that order of precedence.
func LoadSettings(cCtx *cli.Context) (*config.Settings, error) {
	defaults := config.Settings{
		KeyDir:      cCtx.String(KeyDirFlag.Name),
		ListenAddr:  cCtx.String(ListenAddrFlag.Name),
		MetricsAddr: cCtx.String(MetricsAddrFlag.Name),
		Log: config.LogSettings{
			JSON:    cCtx.Bool(LogJsonFlag.Name),
			Debug:   cCtx.Bool(LogDebugFlag.Name),
			Service: cCtx.String("log-service"),
		},
		EnablePprof:  cCtx.Bool(PprofFlag.Name),
		DrainSeconds: cCtx.Int64(DrainSecondsFlag.Name),
	}

	var files []string
	if dir := cCtx.String(ConfigDirFlag.Name); dir != "" {
		var err error
		if files, err = config.ConfFiles(dir, ConfigBaseName); err != nil {
			return nil, err
		}
	}

	settings, err := config.Load(defaults, files...)
	if err != nil {
		return nil, err
	}

	if cCtx.IsSet(KeyDirFlag.Name) {
		settings.KeyDir = defaults.KeyDir
	}
	if cCtx.IsSet(ListenAddrFlag.Name) {
		settings.ListenAddr = defaults.ListenAddr
	}
	if cCtx.IsSet(MetricsAddrFlag.Name) {
		settings.MetricsAddr = defaults.MetricsAddr
	}
	if cCtx.IsSet(LogJsonFlag.Name) {
		settings.Log.JSON = defaults.Log.JSON
	}
	if cCtx.IsSet(LogDebugFlag.Name) {
		settings.Log.Debug = defaults.Log.Debug
	}
	if cCtx.IsSet("log-service") {
		settings.Log.Service = defaults.Log.Service
	}
	if cCtx.IsSet(PprofFlag.Name) {
		settings.EnablePprof = defaults.EnablePprof
	}
	if cCtx.IsSet(DrainSecondsFlag.Name) {
		settings.DrainSeconds = defaults.DrainSeconds
	}
	return settings, nil
}

func ConfigureServer(settings *config.Settings, logger *slog.Logger) *api.HTTPServerConfig {
	return &api.HTTPServerConfig{
		ListenAddr:               settings.ListenAddr,
		MetricsAddr:              settings.MetricsAddr,
		Log:                      logger,
		EnablePprof:              settings.EnablePprof,
		DrainDuration:            time.Duration(settings.DrainSeconds) * time.Second,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
	}
}

var KeyDirFlag = &cli.StringFlag{
	Name:    "key-dir",
	Value:   "keys",
	Usage:   "directory holding <host>/<user>/id_<type>.pub key files",
	EnvVars: []string{envPrefix + "KEY_DIR"},
}

var ConfigDirFlag = &cli.StringFlag{
	Name:    "config-dir",
	Value:   "",
	Usage:   "directory with keyserver.yaml and an optional keyserver.local.yaml",
	EnvVars: []string{envPrefix + "CONFIG_DIR"},
}

var ListenAddrFlag = &cli.StringFlag{
	Name:    "listen-addr",
	Value:   "127.0.0.1:8080",
	Usage:   "address to listen on for API",
	EnvVars: []string{envPrefix + "LISTEN_ADDR"},
}

var ServerURLFlag = &cli.StringFlag{
	Name:    "server",
	Value:   "http://127.0.0.1:8080",
	Usage:   "base URL of the key server",
	EnvVars: []string{envPrefix + "URL"},
}

var TimeoutFlag = &cli.DurationFlag{
	Name:  "timeout",
	Value: 30 * time.Second,
	Usage: "request timeout",
}

var LogJsonFlag = &cli.BoolFlag{
	Name:    "log-json",
	Value:   false,
	Usage:   "log in JSON format",
	EnvVars: []string{envPrefix + "LOG_JSON"},
}
var LogDebugFlag = &cli.BoolFlag{
	Name:    "log-debug",
	Value:   false,
	Usage:   "log debug messages",
	EnvVars: []string{envPrefix + "LOG_DEBUG"},
}
var LogUidFlag = &cli.BoolFlag{
	Name:    "log-uid",
	Value:   false,
	Usage:   "generate a uuid and add to all log messages",
	EnvVars: []string{envPrefix + "LOG_UID"},
}

var LogServiceFlagFn = func(service string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "log-service",
		Value:   service,
		Usage:   "add 'service' tag to logs",
		EnvVars: []string{envPrefix + "LOG_SERVICE"},
	}
}

var PprofFlag = &cli.BoolFlag{
	Name:    "pprof",
	Value:   false,
	Usage:   "enable pprof debug endpoint",
	EnvVars: []string{envPrefix + "PPROF"},
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:    "drain-seconds",
	Value:   45,
	Usage:   "seconds to wait in drain HTTP request",
	EnvVars: []string{envPrefix + "DRAIN_SECONDS"},
}
var MetricsAddrFlag = &cli.StringFlag{
	Name:    "metrics-addr",
	Value:   "127.0.0.1:8090",
	Usage:   "address to listen on for Prometheus metrics",
	EnvVars: []string{envPrefix + "METRICS_ADDR"},
}

var CommonFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	PprofFlag,
	DrainSecondsFlag,
	MetricsAddrFlag,
}
