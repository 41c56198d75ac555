package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"persona-l/api"
	"persona-l/backend"
	"persona-l/config"
	"persona-l/extract"
	"persona-l/identity"
	"persona-l/model"
	"persona-l/storage"
	"persona-l/ui"
)

const (
	Version = "v0.1.0"
	License = "Apache-2.0"
)

func main() {
	// Validate environment variables first
	if config.HasAnyEnvVar() && !config.HasAllEnvVars() {
		missingVar := config.GetMissingEnvVar()
		errorMsg := fmt.Sprintf("Missing environment variable: %s\n\n"+
			"When using environment variables, all 3 must be set:\n"+
			"  • PAL_BACKEND_URL\n"+
			"  • PAL_BACKEND\n"+
			"  • PAL_DATA_DIR\n\n"+
			"Set the missing variable(s) before launching persona-l.",
			missingVar)

		runErrorModal("Configuration Error", errorMsg)
		os.Exit(0)
	}

	settingsPath := config.GetSettingsFilePath()
	isFirstRun := !config.FileExists(settingsPath)

	// Skip welcome wizard if all env vars are set
	if config.HasAllEnvVars() {
		isFirstRun = false
	}

	if isFirstRun {
		welcomeModel := ui.NewWelcomeModel()
		p := tea.NewProgram(
			welcomeModel,
			tea.WithAltScreen(),
		)

		finalModel, err := p.Run()
		if err != nil {
			fmt.Printf("Error running welcome wizard: %v\n", err)
			os.Exit(1)
		}

		if wm, ok := finalModel.(ui.WelcomeModel); ok && !wm.IsComplete() {
			os.Exit(0)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	dataDir := cfg.DataDir()
	if err := config.EnsureDir(dataDir); err != nil {
		fmt.Printf("Failed to create data directory: %v\n", err)
		os.Exit(1)
	}

	// Initialize debug logging after config is loaded
	config.InitDebugLog(dataDir)

	// Credential store failures are not fatal: the hosted and ollama
	// backends work without API keys.
	if err := cfg.LoadCredentials(""); err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Main] credential store unavailable: %v", err)
		}
		if cfg.DefaultBackend == "openai" || cfg.DefaultBackend == "anthropic" {
			runErrorModal("Credential Error",
				fmt.Sprintf("Could not load API credentials:\n%v\n\n"+
					"The %s backend needs an API key.", err, cfg.DefaultBackend))
			os.Exit(1)
		}
	}

	kv, err := storage.NewKV(dataDir)
	if err != nil {
		fmt.Printf("Failed to initialize state storage: %v\n", err)
		os.Exit(1)
	}

	conversations, err := storage.NewConversationStore(dataDir)
	if err != nil {
		fmt.Printf("Failed to initialize conversation storage: %v\n", err)
		os.Exit(1)
	}

	// The hosted client doubles as the identity backend, so it is
	// created even when another chat backend is selected.
	client, err := api.NewClient(cfg.HostedURL, cfg.HostedAPIKey)
	if err != nil {
		runErrorModal("Configuration Error", fmt.Sprintf("Invalid backend URL:\n%v", err))
		os.Exit(1)
	}

	var identityBackend identity.Backend
	if cfg.DefaultBackend == "hosted" {
		identityBackend = client
	}
	idsvc := identity.NewService(kv, identityBackend)

	userID, err := idsvc.Identifier(context.Background())
	if err != nil {
		fmt.Printf("Failed to resolve installation identifier: %v\n", err)
		os.Exit(1)
	}

	be, err := backend.New(cfg, client, userID)
	if err != nil {
		runErrorModal("Backend Error", fmt.Sprintf("Could not initialize the %s backend:\n%v",
			cfg.DefaultBackend, err))
		os.Exit(1)
	}

	extractor := extract.New(extract.NewFetcher())

	dataModel := model.NewModel(cfg, be, idsvc, kv, conversations, extractor, Version, License)

	p := tea.NewProgram(
		ui.NewAppView(dataModel),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runErrorModal(title, message string) {
	p := tea.NewProgram(
		ui.NewErrorModal(title, message),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}
