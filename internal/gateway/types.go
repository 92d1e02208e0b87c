package gateway

// Wire types for the management API. Server-assigned fields carry a
// hash:"ignore" tag so drift hashing only sees user-controlled content.

// API is the remote representation of an API on the gateway.
type API struct {
	// ID is assigned by the management API on creation.
	ID string `json:"id,omitempty" hash:"ignore"`

	Name           string `json:"name"`
	Version        string `json:"version"`
	LifecycleState string `json:"lifecycle_state,omitempty"`

	// State is the runtime state ("STARTED"/"STOPPED"), driven by lifecycle
	// actions rather than by the create/update payload.
	State string `json:"state,omitempty" hash:"ignore"`

	VirtualHosts   []APIVirtualHost   `json:"virtual_hosts"`
	EndpointGroups []APIEndpointGroup `json:"endpoint_groups"`
	Flows          []APIFlow          `json:"flows,omitempty"`

	UpdatedAt int64 `json:"updated_at,omitempty" hash:"ignore"`
}

// APIVirtualHost is one gateway entry point.
type APIVirtualHost struct {
	Host string `json:"host,omitempty"`
	Path string `json:"path"`
}

// APIEndpointGroup is a named backend group.
type APIEndpointGroup struct {
	Name      string        `json:"name"`
	Endpoints []APIEndpoint `json:"endpoints"`
}

// APIEndpoint is a single backend target.
type APIEndpoint struct {
	Name   string `json:"name"`
	Target string `json:"target"`
}

// APIFlow is an ordered policy chain.
type APIFlow struct {
	Name         string    `json:"name,omitempty"`
	Path         string    `json:"path"`
	PathOperator string    `json:"path_operator,omitempty"`
	Pre          []APIStep `json:"pre,omitempty"`
	Post         []APIStep `json:"post,omitempty"`
}

// APIStep is one policy invocation with its decoded configuration.
type APIStep struct {
	Name          string         `json:"name,omitempty"`
	Policy        string         `json:"policy"`
	Enabled       bool           `json:"enabled"`
	Configuration map[string]any `json:"configuration,omitempty"`
}

// Plan is the remote representation of a subscription plan.
type Plan struct {
	// ID is assigned by the management API on creation.
	ID string `json:"id,omitempty" hash:"ignore"`

	Name     string   `json:"name"`
	Security string   `json:"security"`
	Status   string   `json:"status"`
	Scopes   []string `json:"scopes,omitempty"`

	SecurityConfig map[string]any `json:"security_config,omitempty"`

	UpdatedAt int64 `json:"updated_at,omitempty" hash:"ignore"`
}

// LifecycleAction starts or stops an API on the gateway.
type LifecycleAction string

const (
	ActionStart LifecycleAction = "START"
	ActionStop  LifecycleAction = "STOP"
)

// RuntimeState returns the API runtime state this action converges to.
func (a LifecycleAction) RuntimeState() string {
	if a == ActionStart {
		return "STARTED"
	}
	return "STOPPED"
}
