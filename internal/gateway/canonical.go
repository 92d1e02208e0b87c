package gateway

import (
	"fmt"

	"github.com/mitchellh/hashstructure"
)

// Canonicalization strategy for drift detection: the management API
// normalizes and re-orders parts of what it stores, so representations are
// reduced to a canonical form before hashing instead of being compared
// field by field.
//
//   - server-assigned fields (id, state, timestamps) are excluded via
//     hash:"ignore" tags on the wire types;
//   - nil and empty slices are folded together;
//   - map-valued policy configuration hashes order-independently
//     (hashstructure's native map handling), which covers header maps the
//     gateway is known to reorder;
//   - slice order elsewhere (virtual hosts, endpoint groups, flows) is kept,
//     because it is meaningful for routing and policy execution.

func canonicalAPI(in *API) API {
	out := *in
	out.ID = ""
	out.State = ""
	out.UpdatedAt = 0
	if out.LifecycleState == "" {
		out.LifecycleState = "CREATED"
	}
	if len(out.VirtualHosts) == 0 {
		out.VirtualHosts = nil
	}
	if len(out.EndpointGroups) == 0 {
		out.EndpointGroups = nil
	}
	if len(out.Flows) == 0 {
		out.Flows = nil
	} else {
		flows := make([]APIFlow, len(out.Flows))
		for i, f := range out.Flows {
			if f.PathOperator == "" {
				f.PathOperator = "STARTS_WITH"
			}
			f.Pre = canonicalSteps(f.Pre)
			f.Post = canonicalSteps(f.Post)
			flows[i] = f
		}
		out.Flows = flows
	}
	return out
}

func canonicalSteps(steps []APIStep) []APIStep {
	if len(steps) == 0 {
		return nil
	}
	out := make([]APIStep, len(steps))
	for i, s := range steps {
		if len(s.Configuration) == 0 {
			s.Configuration = nil
		}
		out[i] = s
	}
	return out
}

func canonicalPlan(in *Plan) Plan {
	out := *in
	out.ID = ""
	out.UpdatedAt = 0
	if out.Status == "" {
		out.Status = "DRAFT"
	}
	if len(out.Scopes) == 0 {
		out.Scopes = nil
	}
	if len(out.SecurityConfig) == 0 {
		out.SecurityConfig = nil
	}
	return out
}

// HashAPI returns the drift hash of the canonical form of an API.
func HashAPI(in *API) (uint64, error) {
	c := canonicalAPI(in)
	h, err := hashstructure.Hash(c, nil)
	if err != nil {
		return 0, fmt.Errorf("hash api: %w", err)
	}
	return h, nil
}

// HashPlan returns the drift hash of the canonical form of a plan.
func HashPlan(in *Plan) (uint64, error) {
	c := canonicalPlan(in)
	h, err := hashstructure.Hash(c, nil)
	if err != nil {
		return 0, fmt.Errorf("hash plan: %w", err)
	}
	return h, nil
}

// APIsEqual reports whether two API representations are equivalent after
// canonicalization. Either side may be nil.
func APIsEqual(a, b *API) bool {
	if a == nil || b == nil {
		return a == b
	}
	ha, err := HashAPI(a)
	if err != nil {
		return false
	}
	hb, err := HashAPI(b)
	if err != nil {
		return false
	}
	return ha == hb
}

// PlansEqual reports whether two plan representations are equivalent after
// canonicalization. Either side may be nil.
func PlansEqual(a, b *Plan) bool {
	if a == nil || b == nil {
		return a == b
	}
	ha, err := HashPlan(a)
	if err != nil {
		return false
	}
	hb, err := HashPlan(b)
	if err != nil {
		return false
	}
	return ha == hb
}
