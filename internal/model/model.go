package model

import (
	"encoding/json"
	"fmt"

	v1alpha1 "github.com/apimops/gravitee-apim-operator/api/v1alpha1"
	"github.com/apimops/gravitee-apim-operator/internal/gateway"
)

func jsonUnmarshal(raw []byte, out any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// DesiredAPI maps an ApiDefinition spec to the management API's wire
// representation. It is a pure function of the spec; Validate is expected to
// have passed first.
func DesiredAPI(def *v1alpha1.ApiDefinition) (*gateway.API, error) {
	api := &gateway.API{
		Name:           def.Spec.Name,
		Version:        def.Spec.Version,
		LifecycleState: string(def.Spec.LifecycleState),
	}
	if api.LifecycleState == "" {
		api.LifecycleState = string(v1alpha1.LifecycleCreated)
	}

	for _, vh := range def.Spec.Proxy.VirtualHosts {
		api.VirtualHosts = append(api.VirtualHosts, gateway.APIVirtualHost{Host: vh.Host, Path: vh.Path})
	}
	for _, group := range def.Spec.Proxy.Groups {
		g := gateway.APIEndpointGroup{Name: group.Name}
		for _, ep := range group.Endpoints {
			g.Endpoints = append(g.Endpoints, gateway.APIEndpoint{Name: ep.Name, Target: ep.Target})
		}
		api.EndpointGroups = append(api.EndpointGroups, g)
	}

	for _, flow := range def.Spec.Flows {
		f := gateway.APIFlow{
			Name:         flow.Name,
			Path:         flow.PathOperator.Path,
			PathOperator: string(flow.PathOperator.Operator),
		}
		if f.PathOperator == "" {
			f.PathOperator = string(v1alpha1.OperatorStartsWith)
		}
		var err error
		if f.Pre, err = desiredSteps(flow.Pre); err != nil {
			return nil, err
		}
		if f.Post, err = desiredSteps(flow.Post); err != nil {
			return nil, err
		}
		api.Flows = append(api.Flows, f)
	}

	return api, nil
}

func desiredSteps(steps []v1alpha1.FlowStep) ([]gateway.APIStep, error) {
	var out []gateway.APIStep
	for _, step := range steps {
		s := gateway.APIStep{
			Name:    step.Name,
			Policy:  step.Policy,
			Enabled: step.Enabled == nil || *step.Enabled,
		}
		if step.Configuration != nil && len(step.Configuration.Raw) > 0 {
			cfg := map[string]any{}
			if err := json.Unmarshal(step.Configuration.Raw, &cfg); err != nil {
				return nil, fmt.Errorf("policy %q configuration: %w", step.Policy, err)
			}
			s.Configuration = cfg
		}
		out = append(out, s)
	}
	return out, nil
}

// DesiredPlan maps an ApiPlan spec to the wire representation.
func DesiredPlan(plan *v1alpha1.ApiPlan) (*gateway.Plan, error) {
	p := &gateway.Plan{
		Name:     plan.Spec.Name,
		Security: string(plan.Spec.Security),
		Status:   string(plan.Spec.Status),
		Scopes:   append([]string(nil), plan.Spec.Scopes...),
	}
	if p.Status == "" {
		p.Status = string(v1alpha1.PlanDraft)
	}

	if cfg := plan.Spec.SecurityConfiguration; cfg != nil {
		var variant any
		switch {
		case cfg.JWT != nil:
			variant = cfg.JWT
		case cfg.OAuth2 != nil:
			variant = cfg.OAuth2
		case cfg.APIKey != nil:
			variant = cfg.APIKey
		case cfg.MTLS != nil:
			variant = cfg.MTLS
		}
		if variant != nil {
			raw, err := json.Marshal(variant)
			if err != nil {
				return nil, fmt.Errorf("security configuration: %w", err)
			}
			out := map[string]any{}
			if err := json.Unmarshal(raw, &out); err != nil {
				return nil, fmt.Errorf("security configuration: %w", err)
			}
			p.SecurityConfig = out
		}
	}

	return p, nil
}
