package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"llmsuite/internal/config"
	"llmsuite/internal/httpapi"
	"llmsuite/internal/modelops"
	"llmsuite/internal/ollama"
	"llmsuite/internal/profile"
	"llmsuite/internal/registry"
	"llmsuite/internal/run"
	"llmsuite/internal/webui"
)

// version is injected at build time via -ldflags.
var version = "dev"

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func main() {
	root := &cobra.Command{
		Use:           "llmsuite",
		Short:         "Side-by-side comparison panel for local Ollama models",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), versionCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
}

func serveCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Flag and env defaults apply first; an explicit config file
			// overrides them, and explicitly set flags win over the file.
			cfg := config.Config{
				Addr:            envOr("LLMSUITE_ADDR", ":8090"),
				OllamaHost:      envOr("OLLAMA_HOST", ollama.DefaultHost),
				OllamaBin:       modelops.DefaultBin,
				ProfilesPath:    profile.DefaultPath,
				CacheTTLSeconds: envOrInt("LLMSUITE_CACHE_TTL", int(registry.DefaultTTL/time.Second)),
				LogLevel:        envOr("LLMSUITE_LOG_LEVEL", "info"),
			}
			if configPath != "" {
				fileCfg, err := config.Load(configPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				mergeConfig(&cfg, fileCfg)
			}
			flags := cmd.Flags()
			if flags.Changed("addr") {
				cfg.Addr, _ = flags.GetString("addr")
			}
			if flags.Changed("ollama-host") {
				cfg.OllamaHost, _ = flags.GetString("ollama-host")
			}
			if flags.Changed("ollama-bin") {
				cfg.OllamaBin, _ = flags.GetString("ollama-bin")
			}
			if flags.Changed("profiles") {
				cfg.ProfilesPath, _ = flags.GetString("profiles")
			}
			if flags.Changed("cache-ttl") {
				cfg.CacheTTLSeconds, _ = flags.GetInt("cache-ttl")
			}
			if flags.Changed("log-level") {
				cfg.LogLevel, _ = flags.GetString("log-level")
			}
			if flags.Changed("cors-enabled") {
				cfg.CORSEnabled, _ = flags.GetBool("cors-enabled")
			}
			if flags.Changed("cors-origins") {
				cfg.CORSOrigins, _ = flags.GetStringSlice("cors-origins")
			}
			return serve(cfg)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Config file (.yaml/.json/.toml)")
	cmd.Flags().String("addr", ":8090", "HTTP listen address (defaults LLMSUITE_ADDR)")
	cmd.Flags().String("ollama-host", ollama.DefaultHost, "Ollama API base URL (defaults OLLAMA_HOST)")
	cmd.Flags().String("ollama-bin", modelops.DefaultBin, "ollama binary used for pull/remove")
	cmd.Flags().String("profiles", profile.DefaultPath, "Profile file path")
	cmd.Flags().Int("cache-ttl", int(registry.DefaultTTL/time.Second), "Model list cache TTL in seconds")
	cmd.Flags().String("log-level", "info", "Log level: debug|info|warn|error (defaults LLMSUITE_LOG_LEVEL)")
	cmd.Flags().Bool("cors-enabled", false, "Enable CORS middleware")
	cmd.Flags().StringSlice("cors-origins", nil, "Allowed CORS origins")
	return cmd
}

// mergeConfig overlays non-zero file values onto the defaults.
func mergeConfig(dst *config.Config, src config.Config) {
	if src.Addr != "" {
		dst.Addr = src.Addr
	}
	if src.OllamaHost != "" {
		dst.OllamaHost = src.OllamaHost
	}
	if src.OllamaBin != "" {
		dst.OllamaBin = src.OllamaBin
	}
	if src.ProfilesPath != "" {
		dst.ProfilesPath = src.ProfilesPath
	}
	if src.CacheTTLSeconds != 0 {
		dst.CacheTTLSeconds = src.CacheTTLSeconds
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.CORSEnabled {
		dst.CORSEnabled = true
	}
	if len(src.CORSOrigins) != 0 {
		dst.CORSOrigins = src.CORSOrigins
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}

func serve(cfg config.Config) error {
	log := newLogger(cfg.LogLevel)

	client := ollama.NewClient(cfg.OllamaHost, log)
	reg := registry.New(client, time.Duration(cfg.CacheTTLSeconds)*time.Second, log)
	ops := modelops.New(cfg.OllamaBin, log)
	store, err := profile.NewStore(cfg.ProfilesPath, log)
	if err != nil {
		return fmt.Errorf("profile store: %w", err)
	}
	coord := run.NewCoordinator(client, log)

	httpapi.SetLogger(log)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins,
		[]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		[]string{"Content-Type", "X-Log-Level"})

	// Cancel in-flight runs on shutdown.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)

	mux := httpapi.NewMux(httpapi.Server{
		Runner:    coord,
		Models:    reg,
		Installer: ops,
		Profiles:  store,
		Prober:    client,
		UI:        webui.Handler(),
	})
	srv := &http.Server{Addr: cfg.Addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("ollama", cfg.OllamaHost).Msg("llmsuite listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-stop:
	}
	log.Info().Msg("shutting down")
	cancelBase()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	return nil
}
