package tools

import (
	"net/http"
	"time"
)

// RegistryOptions configures the built-in tool set.
type RegistryOptions struct {
	// HTTPClient serves the network-backed tools (literature, disease
	// targets, clinical trials). When nil they register as degraded:
	// listed for introspection but never offered to the model.
	HTTPClient *http.Client
	// LiteratureBaseURL overrides the NCBI E-utilities endpoint.
	LiteratureBaseURL string
	// OpenTargetsBaseURL overrides the Open Targets GraphQL endpoint.
	OpenTargetsBaseURL string
	// TrialsBaseURL overrides the ClinicalTrials.gov API endpoint.
	TrialsBaseURL string
	// CodeTimeout bounds sandboxed python execution wall-clock time.
	CodeTimeout time.Duration
}

// BuildRegistry registers the full domain tool set.
func BuildRegistry(opts RegistryOptions) (*Registry, error) {
	reg := NewRegistry()

	groups := [][]Tool{
		herbTools(),
		formulaTools(),
		interactionTools(),
		safetyTools(),
		meridianTools(),
		syndromeTools(),
		compoundTools(),
		pharmacologyTools(),
		{indicationMapTool()},
	}
	for _, group := range groups {
		for _, tool := range group {
			if err := reg.Register(tool); err != nil {
				return nil, err
			}
		}
	}

	netStatus := StatusReady
	client := opts.HTTPClient
	if client == nil {
		netStatus = StatusDegraded
		client = http.DefaultClient
	}
	litClient := newLiteratureClient(client, opts.LiteratureBaseURL)
	networkTools := literatureTools(litClient)
	networkTools = append(networkTools, diseaseTargetsTool(newOpenTargetsClient(client, opts.OpenTargetsBaseURL)))
	networkTools = append(networkTools, evidenceTools(newTrialsClient(client, opts.TrialsBaseURL), litClient)...)
	for _, tool := range networkTools {
		if err := reg.RegisterWithStatus(tool, netStatus); err != nil {
			return nil, err
		}
	}

	if err := reg.Register(newCodeTool(opts.CodeTimeout)); err != nil {
		return nil, err
	}

	return reg, nil
}
