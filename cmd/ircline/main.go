// =============================================================================
// main.go - ircline Entry Point
// =============================================================================
//
// ircline is a terminal chat client. It wires a configuration, a logger and
// optional Prometheus metrics around an ircclient.Session and runs a REPL
// with slash commands on top of it.
//
// Usage:
//
//	ircline                                   Start disconnected
//	ircline --server irc.libera.chat --nick me
//	ircline --config ~/.config/ircline.yaml   Load settings from YAML
//	ircline --help                            Show help
//
// Settings are layered: defaults, then the YAML file, then .env and
// IRCLINE_* environment variables, then flags. With a server and a nickname
// configured the client connects at startup, and joins the configured
// channel.
//
// =============================================================================

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ircline/ircline/internal/config"
	"github.com/ircline/ircline/ircclient"
)

const (
	version = "0.1.0"
	appName = "ircline"
)

func fullTitle() string {
	return fmt.Sprintf("%s v%s", appName, version)
}

func welcomeBanner() string {
	return fmt.Sprintf(`%s - terminal chat client
Type '/help' for available commands.
Type '/quit' to exit.
`, fullTitle())
}

// options holds the command-line flags.
type options struct {
	configPath  string
	envFile     string
	server      string
	port        int
	nick        string
	realName    string
	channel     string
	logLevel    string
	metricsAddr string
	quiet       bool
}

func newRootCmd(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:           "ircline",
		Short:         "Terminal chat client",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, *opts)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, opts.quiet)
		},
	}

	f := root.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	f.StringVar(&opts.envFile, "env-file", ".env", "dotenv file with IRCLINE_* variables")
	f.StringVarP(&opts.server, "server", "s", "", "server host to connect to at startup")
	f.IntVarP(&opts.port, "port", "p", ircclient.DefaultPort, "server port")
	f.StringVarP(&opts.nick, "nick", "n", "", "nickname")
	f.StringVar(&opts.realName, "realname", "", "real name (defaults to the nickname)")
	f.StringVar(&opts.channel, "channel", "", "channel to join after connecting")
	f.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9100)")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "hide plain server lines")

	return root
}

// loadConfig layers flags the user set over the file and environment.
func loadConfig(cmd *cobra.Command, opts options) (*config.Config, error) {
	if err := config.LoadDotEnv(opts.envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.Server.Host = opts.server
	}
	if flags.Changed("port") {
		cfg.Server.Port = opts.port
	}
	if flags.Changed("nick") {
		cfg.Identity.Nickname = opts.nick
	}
	if flags.Changed("realname") {
		cfg.Identity.RealName = opts.realName
	}
	if flags.Changed("channel") {
		cfg.Channel = opts.channel
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = opts.metricsAddr
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// startMetrics serves reg on addr until ctx ends.
func startMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", slog.Any("err", err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	logger.Info("serving metrics", slog.String("addr", addr))
}

// setupSignalHandler runs cleanup and exits on SIGINT or SIGTERM. Ctrl-C at
// an interactive prompt is handled by readline and ends the REPL instead.
func setupSignalHandler(cleanup func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println()
		cleanup()
		os.Exit(0)
	}()
}

func run(ctx context.Context, cfg *config.Config, quiet bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := newLogger(os.Stderr, cfg.SlogLevel())

	var metrics *ircclient.Metrics
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		metrics = ircclient.NewMetrics(reg)
		startMetrics(ctx, cfg.MetricsAddr, reg, logger)
	}

	session := ircclient.NewSession(
		ircclient.WithLogger(logger),
		ircclient.WithMetrics(metrics),
		ircclient.WithConnectTimeout(cfg.ConnectTimeout),
	)
	session.SetIdentity(cfg.Identity.Nickname, cfg.Identity.RealName)

	editor := NewLineEditor(cfg.HistoryFile)
	defer editor.Close()

	render := newRenderer(editor.Output())
	render.quiet = quiet
	render.attach(session)

	setupSignalHandler(func() {
		session.Disconnect()
		editor.Close()
	})

	render.printf("%s\n", welcomeBanner())
	autoConnect(ctx, session, cfg, render)

	newREPL(session, editor, render, cfg.Server.Port).run(ctx)

	session.Disconnect()
	return nil
}

// autoConnect connects and joins when the configuration names a server and
// a nickname.
func autoConnect(ctx context.Context, session *ircclient.Session, cfg *config.Config, render *renderer) {
	if !cfg.AutoConnect() {
		return
	}
	if err := session.Connect(ctx, cfg.Server.Host, cfg.Server.Port); err != nil {
		return
	}
	if cfg.Channel != "" {
		if err := session.JoinChannel(cfg.Channel); err != nil {
			render.printf("Error: %v\n", err)
		}
	}
}

func main() {
	if err := newRootCmd(&options{}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
