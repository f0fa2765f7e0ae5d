package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"

	"github.com/naivary/pixst"
	"github.com/naivary/pixst/configuration"
	"github.com/naivary/pixst/graph"
	"github.com/naivary/pixst/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the object store server",
	Long: `Run the object store server.
	For example:
	pixst serve -c /etc/pixst/config.yml
	will serve the HTTP API on the configured address.`,
	Run: serve,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(cmd *cobra.Command, args []string) {
	cfgFilePath, err := cmd.Flags().GetString("config")
	if err != nil {
		fmt.Println(err)
		return
	}
	cfg, err := configuration.Load(cfgFilePath)
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		log.Fatalf("unknown log level %q: %v", cfg.LogLevel, err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	if err := graph.Init(); err != nil {
		log.Fatalf("cannot initialize instrumentation: %v", err)
	}
	opts := pixst.NewDefaultStoreOptions()
	if cfg.DataDir != "" {
		opts = opts.WithDataDir(cfg.DataDir)
	}
	store, err := pixst.NewStore(opts)
	if err != nil {
		log.Fatalf("cannot open store: %v", err)
	}
	defer func() {
		if err := store.Shutdown(); err != nil {
			logger.Error("cannot shut down store", slog.String("msg", err.Error()))
		}
	}()

	handlerOpts := server.DefaultHandlerOptions()
	if cfg.JwtKey != "" {
		handlerOpts.IsAuthorized = server.JWTAuth(cfg.JwtKey)
	}
	handler := server.NewHandler(store, handlerOpts)
	logger.Info("serving", slog.String("addr", cfg.Addr), slog.String("dir", store.BasePath))
	if err := handler.Serve(cfg.Addr); err != nil {
		logger.Error("server stopped", slog.String("msg", err.Error()))
	}
}
