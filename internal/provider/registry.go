package provider

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/shennong-ai/shennong/internal/costs"
	"github.com/shennong-ai/shennong/internal/logging"
)

// ProviderConfig is the per-vendor connection configuration. A missing
// APIKey falls back to the vendor's conventional environment variable.
type ProviderConfig struct {
	APIKey    string
	BaseURL   string
	MaxTokens int
}

// RetryPolicy bounds the transient-failure retry loop. Delays double per
// attempt from BaseDelay; a vendor Retry-After hint overrides the
// computed delay for that attempt.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
}

const (
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = 2 * time.Second
)

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	Providers  map[string]ProviderConfig
	Retry      RetryPolicy
	Ledger     *costs.Ledger
	HTTPClient *http.Client
}

// Registry routes chat requests to vendor adapters. It resolves model
// aliases through the catalog, lazily constructs one adapter per vendor,
// retries transient failures, and appends one ledger record per attempt.
type Registry struct {
	mu       sync.RWMutex
	catalog  *Catalog
	configs  map[string]ProviderConfig
	adapters map[string]Provider
	retry    RetryPolicy
	ledger   *costs.Ledger
	client   *http.Client

	// sleep is replaceable in tests so retry paths run instantly.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRegistry builds a registry over the built-in catalog.
func NewRegistry(opts RegistryOptions) *Registry {
	retry := opts.Retry
	if retry.Attempts <= 0 {
		retry.Attempts = defaultRetryAttempts
	}
	if retry.BaseDelay <= 0 {
		retry.BaseDelay = defaultRetryBaseDelay
	}
	configs := opts.Providers
	if configs == nil {
		configs = map[string]ProviderConfig{}
	}
	return &Registry{
		catalog:  NewCatalog(),
		configs:  configs,
		adapters: make(map[string]Provider),
		retry:    retry,
		ledger:   opts.Ledger,
		client:   opts.HTTPClient,
		sleep:    sleepContext,
	}
}

// Catalog exposes the model catalog for listing and pricing lookups.
func (r *Registry) Catalog() *Catalog {
	return r.catalog
}

// HasCredential reports whether a usable key exists for the vendor,
// either configured or in its conventional environment variable.
func (r *Registry) HasCredential(providerName string) bool {
	profile, ok := vendorProfiles[providerName]
	if !ok {
		return false
	}
	r.mu.RLock()
	cfg := r.configs[providerName]
	r.mu.RUnlock()
	return resolveAPIKey(cfg.APIKey, profile) != ""
}

// KeyEnvVar names the environment variable consulted for the vendor's
// credential, or "" for an unknown vendor.
func (r *Registry) KeyEnvVar(providerName string) string {
	return vendorProfiles[providerName].apiKeyEnv
}

// Complete resolves the request's model, dispatches to the owning vendor
// adapter, and retries transient failures up to the configured budget.
// Every network attempt lands in the ledger, failures included; requests
// rejected before any attempt (unknown model, missing credential) leave
// the ledger untouched.
func (r *Registry) Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	info, err := r.catalog.Resolve(req.Model)
	if err != nil {
		return nil, err
	}
	req.Model = info.ID

	adapter, err := r.providerFor(info.Provider)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < r.retry.Attempts; attempt++ {
		start := time.Now()
		resp, err := adapter.Chat(ctx, req)
		r.appendRecord(ctx, info, resp, err, time.Since(start))

		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !IsTransient(err) {
			return nil, err
		}
		if attempt == r.retry.Attempts-1 {
			break
		}
		if err := r.sleep(ctx, r.retryDelay(attempt, err)); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// retryDelay doubles from the base per attempt; a vendor Retry-After hint
// wins when present.
func (r *Registry) retryDelay(attempt int, err error) time.Duration {
	if pe, ok := AsError(err); ok && pe.RetryAfter > 0 {
		return pe.RetryAfter
	}
	return r.retry.BaseDelay << attempt
}

func (r *Registry) appendRecord(ctx context.Context, info ModelInfo, resp *ChatResponse, callErr error, elapsed time.Duration) {
	if r.ledger == nil {
		return
	}
	rec := costs.Record{
		Provider:   info.Provider,
		Model:      info.ID,
		DurationMS: elapsed.Milliseconds(),
		Status:     costs.StatusOK,
	}
	if callErr != nil {
		if pe, ok := AsError(callErr); ok {
			rec.Status = string(pe.Code)
		} else {
			rec.Status = string(CodeUnavailable)
		}
	} else if resp != nil {
		rec.InputTokens = resp.Usage.InputTokens
		rec.OutputTokens = resp.Usage.OutputTokens
		rec.TotalTokens = resp.Usage.TotalTokens
		rec.CostUSD = r.estimateCost(info.ID, resp.Usage)
	}
	if err := r.ledger.Append(ctx, rec); err != nil {
		logging.Logger().Warn("usage record not persisted", "error", err)
	}
}

func (r *Registry) estimateCost(modelID string, usage TokenUsage) float64 {
	inPrice, outPrice, ok := r.catalog.Pricing(modelID)
	if !ok {
		return 0
	}
	return float64(usage.InputTokens)*inPrice/1e6 + float64(usage.OutputTokens)*outPrice/1e6
}

// providerFor returns the cached adapter for a vendor, constructing it on
// first use. Construction validates the credential, so a missing key
// fails here before any network attempt.
func (r *Registry) providerFor(name string) (Provider, error) {
	r.mu.RLock()
	adapter, ok := r.adapters[name]
	r.mu.RUnlock()
	if ok {
		return adapter, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if adapter, ok := r.adapters[name]; ok {
		return adapter, nil
	}

	profile, ok := vendorProfiles[name]
	if !ok {
		return nil, &Error{Code: CodeUnknownModel, Provider: name, Message: "unsupported provider"}
	}
	cfg := r.configs[name]
	apiKey := resolveAPIKey(cfg.APIKey, profile)

	var err error
	switch name {
	case "anthropic":
		adapter, err = newAnthropicProvider(apiKey, cfg.BaseURL, cfg.MaxTokens, r.client)
	case "google":
		adapter, err = newGeminiProvider(apiKey, cfg.BaseURL, cfg.MaxTokens, r.client)
	default:
		adapter, err = newOpenAICompatProvider(profile, apiKey, cfg.BaseURL, cfg.MaxTokens, r.client)
	}
	if err != nil {
		return nil, err
	}
	r.adapters[name] = adapter
	return adapter, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
