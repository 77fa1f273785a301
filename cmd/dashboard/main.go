package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"mailtriage/config"
	"mailtriage/internal/dashboard"
	"mailtriage/internal/tui"
)

func main() {
	csvPath := flag.String("csv", "", "CSV file to stage for upload")
	baseURL := flag.String("base-url", "", "API base URL (overrides config)")
	flag.Parse()

	cfg := config.Load()
	if *baseURL != "" {
		cfg.Dashboard.BaseURL = *baseURL
	}

	// TUI 占用终端，日志写文件
	zapCfg := zap.NewProductionConfig()
	zapCfg.OutputPaths = []string{"dashboard.log"}
	log, err := zapCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	client := dashboard.NewClient(cfg.Dashboard.BaseURL)
	if cfg.Dashboard.Email != "" {
		if err := client.Login(context.Background(), cfg.Dashboard.Email, cfg.Dashboard.Password); err != nil {
			fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
			os.Exit(1)
		}
		log.Info("Logged in", zap.String("email", cfg.Dashboard.Email))
	}

	interval := time.Duration(cfg.Dashboard.PollIntervalSeconds) * time.Second
	controller := dashboard.NewController(client, interval, log)
	if *csvPath != "" {
		controller.StageUpload(*csvPath)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := controller.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start controller: %v\n", err)
		os.Exit(1)
	}
	defer controller.Stop()

	program := tea.NewProgram(tui.NewModel(controller), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error running dashboard: %v\n", err)
		os.Exit(1)
	}
}
