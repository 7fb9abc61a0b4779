// Command execution for CLI commands.
//
// Information Hiding:
// - Collaborator wiring (provider, capture, input, telemetry) hidden
// - Output formatting hidden
// - Audit database plumbing hidden behind the audit subcommands

package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/richinex/golem/agent"
	"github.com/richinex/golem/config"
	"github.com/richinex/golem/input"
	"github.com/richinex/golem/llm"
	"github.com/richinex/golem/screen"
	"github.com/richinex/golem/storage"
	"github.com/richinex/golem/telemetry"
	"github.com/richinex/golem/tools"
)

// Options holds CLI execution options.
type Options struct {
	Provider string
	Model    string
	MaxSteps int
	Verbose  bool
	NoAudit  bool
}

// DefaultOptions returns default CLI options.
func DefaultOptions() Options {
	return Options{
		MaxSteps: agent.DefaultMaxSteps,
	}
}

// Run drives one mission end to end and prints exactly one outcome
// line: completed with its turn count, or step budget exhausted. A
// fatal error aborts with a non-nil return instead.
func Run(ctx context.Context, mission string, opts Options) error {
	settings, err := config.New(opts.Provider)
	if err != nil {
		return err
	}
	if opts.MaxSteps > 0 {
		settings.Agent.MaxSteps = opts.MaxSteps
	}
	if opts.Model != "" {
		settings.LLM.Model = opts.Model
	}
	if opts.NoAudit {
		settings.Audit.Enabled = false
	}

	provider, err := createProvider(settings.LLM)
	if err != nil {
		return err
	}

	log := telemetry.NewLogger(opts.Verbose)
	defer func() { _ = telemetry.Sync(log) }()

	var audit *storage.Audit
	if settings.Audit.Enabled {
		audit, err = storage.OpenAudit(settings.Audit.Path)
		if err != nil {
			return fmt.Errorf("failed to open audit trail: %w", err)
		}
		defer audit.Close()
	}
	recorder := telemetry.NewRecorder(log, audit)

	capturer := screen.NewDisplay(
		settings.Screen.TargetWidth,
		settings.Screen.TargetHeight,
		settings.Screen.JPEGQuality,
	)
	driver := input.NewXdo(input.DefaultActionTimeout)

	a := agent.New(agent.Config{
		MaxSteps:              settings.Agent.MaxSteps,
		ReviewInterval:        settings.Agent.ReviewInterval,
		CompactionThreshold:   settings.Agent.CompactionThreshold,
		RecoveryEnabled:       settings.Agent.RecoveryEnabled,
		RecoveryAfterFailures: settings.Agent.RecoveryAfterFailures,
		RecoveryCooldown:      settings.Agent.RecoveryCooldown,
		MinEvidenceRunes:      settings.Agent.MinEvidenceRunes,
		SettleDelay:           settings.Agent.SettleDelay,
		TurnDelay:             settings.Agent.TurnDelay,
	}, provider, capturer, driver, recorder)

	fmt.Printf("Running mission with %s (%s)...\n\n", provider.Name(), provider.Model())

	outcome, err := a.Run(ctx, mission)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	if outcome.Completed() {
		fmt.Printf("Mission completed in %d turns (%s).\n\nEvidence:\n%s\n",
			outcome.Turns, outcome.Elapsed.Round(time.Second), outcome.Evidence)
	} else {
		fmt.Printf("Step budget exhausted after %d turns (%s); mission not completed.\n",
			outcome.Turns, outcome.Elapsed.Round(time.Second))
	}
	return nil
}

// createProvider builds the model collaborator from settings.
func createProvider(cfg config.LLMConfig) (llm.Provider, error) {
	if cfg.Provider == "" {
		return nil, fmt.Errorf("--provider is required for this command")
	}

	providerType, err := llm.ParseProviderType(cfg.Provider)
	if err != nil {
		return nil, err
	}

	builder := llm.NewProviderBuilder(providerType).
		MaxTokens(cfg.MaxTokens).
		Temperature(float32(cfg.Temperature))
	if cfg.Model != "" {
		builder = builder.Model(cfg.Model)
	}
	if cfg.BaseURL != "" {
		builder = builder.BaseURL(cfg.BaseURL)
	}
	return builder.FromEnv()
}

// ListTools prints both phase vocabularies from the registry.
func ListTools() {
	fmt.Println("PLANNING TOOLS")
	fmt.Println("==============")
	fmt.Println(tools.Describe(tools.PhasePlanning))
	fmt.Println()
	fmt.Println("EXECUTION TOOLS")
	fmt.Println("===============")
	fmt.Println(tools.Describe(tools.PhaseExecution))
}
