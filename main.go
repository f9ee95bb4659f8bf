package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"proxymanager/backend/config"
	"proxymanager/backend/repository/events"
	"proxymanager/backend/service/applog"
	"proxymanager/backend/service/shared"
	"proxymanager/backend/service/sysproxy"
)

var mainCommand = &cobra.Command{
	Use:           "proxymanager",
	Short:         "Manage the Windows system proxy across LAN and dial-up connections",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configPath string
	dataRoot   string
	dryRun     bool
	devMode    bool
)

func init() {
	flags := mainCommand.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", config.DefaultConfigFile, "configuration file path")
	flags.StringVarP(&dataRoot, "data-root", "D", "", "directory for runtime files (env "+shared.DataRootEnv+")")
	flags.BoolVar(&dryRun, "dry-run", false, "keep proxy state in memory instead of touching the OS")
	flags.BoolVar(&devMode, "dev", false, "enable development mode with verbose logging")
}

func main() {
	if err := mainCommand.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration file and applies the persistent flags that were
// set explicitly on the command line.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("data-root") {
		cfg.DataRoot = dataRoot
	}
	if flags.Changed("dry-run") {
		cfg.DryRun = dryRun
	}
	if flags.Changed("dev") {
		cfg.Dev = devMode
	}
	return cfg, nil
}

// app 命令共享的运行时组件
type app struct {
	log    *applog.Log
	bus    *events.Bus
	proxy  *sysproxy.Controller
	closed bool
}

// newRuntime opens the app log and builds the proxy controller. withLogFile=false keeps
// one-shot commands on stderr so they do not rotate the server's log file.
func newRuntime(cfg config.Config, withLogFile bool) (*app, error) {
	retain, err := cfg.LogRetain()
	if err != nil {
		return nil, err
	}
	opts := applog.Options{Retain: retain, Dev: cfg.Dev}
	if withLogFile {
		opts.Path = strings.TrimSpace(cfg.Log.Path)
		if opts.Path == "" {
			opts.Path = shared.AppLogPath(shared.ResolveDataRoot(cfg.DataRoot))
		}
	}
	appLog, err := applog.Open(opts)
	if err != nil {
		return nil, err
	}

	var store shared.ProxyStore
	if cfg.DryRun {
		appLog.Info("dry run: system proxy changes stay in memory")
		store = shared.NewMemoryStore()
	} else {
		store = shared.NewSystemProxyStore()
	}

	bus := events.NewBus()
	return &app{
		log:   appLog,
		bus:   bus,
		proxy: sysproxy.NewController(store, bus, appLog.Logger),
	}, nil
}

func (r *app) Close() {
	if r.closed {
		return
	}
	r.closed = true
	if err := r.log.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "close log:", err)
	}
}

func (r *app) logger() *zap.Logger { return r.log.Logger }
