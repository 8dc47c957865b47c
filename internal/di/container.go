package di

import (
	"context"
	"fmt"

	"ui-operator/internal/application/port/input"
	"ui-operator/internal/application/port/output"
	"ui-operator/internal/application/service"
	"ui-operator/internal/infrastructure/artifacts"
	"ui-operator/internal/infrastructure/browser/local"
	"ui-operator/internal/infrastructure/browser/rod"
	"ui-operator/internal/infrastructure/browserbase"
	"ui-operator/internal/infrastructure/config"
	"ui-operator/internal/infrastructure/llm/chatcompletion"
	"ui-operator/internal/infrastructure/logger"
	"ui-operator/internal/infrastructure/prompts"
	"ui-operator/internal/infrastructure/userinteraction"
	"ui-operator/internal/usecase/operator"
)

type Container struct {
	Logger          output.LoggerPort
	LLM             output.LLMPort
	Sessions        output.SessionProvider
	UserInteraction output.UserInteractionPort
	TaskExecutor    input.TaskExecutor
}

// NewContainer wires the operator from cfg. A nil ui selects the console.
func NewContainer(ctx context.Context, cfg *config.Config, ui output.UserInteractionPort) (*Container, error) {
	log, err := logger.NewLoggerAdapter(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	if ui == nil {
		ui = userinteraction.NewConsoleUserInteraction()
	}

	policy, err := service.NewNavigationPolicy(cfg.Target.AllowedOrigins)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to create navigation policy: %w", err)
	}

	systemPrompt := cfg.Agent.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = prompts.SystemPromptTemplate
	}
	systemPrompt, err = prompts.GenerateSystemPrompt(systemPrompt, cfg.Target.AllowedOrigins, cfg.Target.AnswerSelector)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to generate system prompt: %w", err)
	}

	llmCfg := chatcompletion.DefaultConfig(cfg.LLM.APIKey, cfg.LLM.Model)
	if cfg.LLM.BaseURL != "" {
		llmCfg.BaseURL = cfg.LLM.BaseURL
	}
	llmCfg.LogTraffic = cfg.LLM.LogTraffic
	llm := chatcompletion.NewAdapter(llmCfg, log.WithField("component", "llm"))

	provider := newSessionProvider(cfg, log)

	connector := rod.NewConnector(rod.Config{
		Timeout:           cfg.Browser.Timeout,
		NavigationTimeout: cfg.Browser.NavigationTimeout,
		SlowMotion:        cfg.Browser.SlowMotion,
	}, log.WithField("component", "browser"))

	uc := operator.New(operator.Config{
		StartURL:      cfg.Target.StartURL,
		SystemPrompt:  systemPrompt,
		AskUserInput:  cfg.Target.AskUserInput,
		AskUserSubmit: cfg.Target.AskUserSubmit,
		MaxSteps:      cfg.Agent.MaxSteps,
	}, operator.Deps{
		Sessions:  service.NewSessionManager(provider, connector, log),
		Bootstrap: service.NewBootstrap(bootstrapConfig(cfg.Bootstrap), log),
		Extractor: service.NewExtractor(service.ExtractorConfig{
			AnswerSelector:  cfg.Target.AnswerSelector,
			ObservationWait: cfg.Agent.ObservationWait,
			MaxChars:        cfg.Agent.SnapshotMaxChars,
		}, log),
		Planner:         service.NewToolPlanner(llm, log),
		Dispatcher:      service.NewDispatcher(policy, log),
		UserInteraction: ui,
		Artifacts:       newArtifacts(cfg, log),
		Logger:          log,
	})

	return &Container{
		Logger:          log,
		LLM:             llm,
		Sessions:        provider,
		UserInteraction: ui,
		TaskExecutor:    uc,
	}, nil
}

func newSessionProvider(cfg *config.Config, log output.LoggerPort) output.SessionProvider {
	if cfg.Browser.Mode == config.BrowserModeLocal {
		return local.NewProvider(local.Config{
			Headless:  cfg.Browser.Headless,
			NoSandbox: cfg.Browser.NoSandbox,
			Bin:       cfg.Browser.Bin,
		}, log.WithField("component", "local"))
	}
	return browserbase.NewClient(browserbase.Config{
		APIKey:    cfg.Browserbase.APIKey,
		ProjectID: cfg.Browserbase.ProjectID,
		BaseURL:   cfg.Browserbase.BaseURL,
	}, log.WithField("component", "browserbase"))
}

func newArtifacts(cfg *config.Config, log output.LoggerPort) output.ArtifactPort {
	if cfg.Artifacts.Dir == "" {
		return nil
	}
	return artifacts.NewRecorder(cfg.Artifacts.Dir, log)
}

func bootstrapConfig(c config.BootstrapConfig) service.BootstrapConfig {
	return service.BootstrapConfig{
		LoadTimeout:       c.LoadTimeout,
		SignInLink:        c.SignInLink,
		SignInLoadTimeout: c.SignInLoadTimeout,
		ReadyMarker:       c.ReadyMarker,
		OAuthButton:       c.OAuthButton,
		PopupTimeout:      c.PopupTimeout,
		EmailField:        c.EmailField,
		PasswordField:     c.PasswordField,
		NextButton:        c.NextButton,
		PasswordTimeout:   c.PasswordTimeout,
		PopupCloseTimeout: c.PopupCloseTimeout,
		SettleDelay:       c.SettleDelay,
		Email:             c.Email,
		Password:          c.Password,
	}
}

func (c *Container) Close() {
	if c.Logger != nil {
		c.Logger.Close()
	}
}
