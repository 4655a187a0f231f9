package cli

import (
	"net/http"

	"github.com/shennong-ai/shennong/internal/agent"
	"github.com/shennong-ai/shennong/internal/config"
	"github.com/shennong-ai/shennong/internal/costs"
	"github.com/shennong-ai/shennong/internal/provider"
	"github.com/shennong-ai/shennong/internal/tools"
)

// runtimeDeps is the assembled application: one shared HTTP client, the
// provider registry writing into the usage ledger, and the tool
// dispatcher over the built-in registry.
type runtimeDeps struct {
	cfg        *config.Config
	providers  *provider.Registry
	toolReg    *tools.Registry
	dispatcher *tools.Dispatcher
	ledger     *costs.Ledger
}

// newCompleter is replaceable in tests so commands run without network
// credentials.
var newCompleter = func(deps *runtimeDeps) agent.Completer {
	return deps.providers
}

func buildRuntime(cfg *config.Config) (*runtimeDeps, error) {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout()}
	ledger := costs.NewLedger(cfg.UsagePath())

	providers := provider.NewRegistry(provider.RegistryOptions{
		Providers: cfg.ProviderConfigs(),
		Retry: provider.RetryPolicy{
			Attempts:  cfg.Agent.RetryAttempts,
			BaseDelay: cfg.Agent.RetryBaseDelay,
		},
		Ledger:     ledger,
		HTTPClient: httpClient,
	})

	toolReg, err := tools.BuildRegistry(tools.RegistryOptions{
		HTTPClient:         httpClient,
		LiteratureBaseURL:  cfg.Tools.LiteratureBaseURL,
		OpenTargetsBaseURL: cfg.Tools.OpenTargetsBaseURL,
		TrialsBaseURL:      cfg.Tools.TrialsBaseURL,
		CodeTimeout:        cfg.Tools.CodeTimeout,
	})
	if err != nil {
		return nil, err
	}
	dispatcher := tools.NewDispatcher(
		toolReg,
		tools.NewHealthMonitor(0, 0, 0),
		cfg.Agent.ToolTimeout,
		cfg.Agent.MaxParallelTools,
	)

	return &runtimeDeps{
		cfg:        cfg,
		providers:  providers,
		toolReg:    toolReg,
		dispatcher: dispatcher,
		ledger:     ledger,
	}, nil
}

func (d *runtimeDeps) newAgent() *agent.Agent {
	return agent.New(newCompleter(d), d.dispatcher, agent.Config{
		MaxIterations:     d.cfg.Agent.MaxIterations,
		ValidationRetries: d.cfg.Agent.ValidationRetries,
	})
}
