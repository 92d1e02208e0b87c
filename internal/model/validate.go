// Package model holds the pure desired-state model: validation, reference
// resolution and the mapping from custom resources to the management API's
// wire representation. Everything here is deterministic and side-effect free,
// so the same code backs both the reconcilers and the offline CI validator.
package model

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	v1alpha1 "github.com/apimops/gravitee-apim-operator/api/v1alpha1"
)

// ValidationError is a permanent rejection of a spec. It is never retried;
// the resource goes to a terminal Error state until the spec changes.
type ValidationError struct {
	Resource string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Resource, strings.Join(e.Problems, "; "))
}

// ContextNotFoundError means a contextRef did not resolve.
type ContextNotFoundError struct {
	Ref v1alpha1.ResourceRef
}

func (e *ContextNotFoundError) Error() string {
	return fmt.Sprintf("management context %s/%s not found", e.Ref.Namespace, e.Ref.Name)
}

// ValidateApiDefinition checks an ApiDefinition spec. All problems are
// collected so the user sees the full list at once.
func ValidateApiDefinition(def *v1alpha1.ApiDefinition) error {
	var problems []string

	if def.Spec.Name == "" {
		problems = append(problems, "spec.name is required")
	}
	if def.Spec.Version == "" {
		problems = append(problems, "spec.version is required")
	}
	if def.Spec.ContextRef.Name == "" {
		problems = append(problems, "spec.contextRef.name is required")
	}

	if len(def.Spec.Proxy.VirtualHosts) == 0 {
		problems = append(problems, "spec.proxy.virtualHosts must not be empty")
	}
	for i, vh := range def.Spec.Proxy.VirtualHosts {
		if vh.Path == "" {
			problems = append(problems, fmt.Sprintf("spec.proxy.virtualHosts[%d].path is required", i))
		} else if !strings.HasPrefix(vh.Path, "/") {
			problems = append(problems, fmt.Sprintf("spec.proxy.virtualHosts[%d].path must start with '/': %q", i, vh.Path))
		}
	}

	if len(def.Spec.Proxy.Groups) == 0 {
		problems = append(problems, "spec.proxy.groups must not be empty")
	}
	endpoints := 0
	for gi, group := range def.Spec.Proxy.Groups {
		if group.Name == "" {
			problems = append(problems, fmt.Sprintf("spec.proxy.groups[%d].name is required", gi))
		}
		for ei, ep := range group.Endpoints {
			endpoints++
			if ep.Target == "" {
				problems = append(problems, fmt.Sprintf("spec.proxy.groups[%d].endpoints[%d].target is required", gi, ei))
			}
		}
	}
	if len(def.Spec.Proxy.Groups) > 0 && endpoints == 0 {
		problems = append(problems, "spec.proxy.groups must contain at least one endpoint")
	}

	for fi, flow := range def.Spec.Flows {
		if flow.PathOperator.Path == "" {
			problems = append(problems, fmt.Sprintf("spec.flows[%d].pathOperator.path is required", fi))
		}
		for si, step := range append(append([]v1alpha1.FlowStep{}, flow.Pre...), flow.Post...) {
			var raw []byte
			if step.Configuration != nil {
				raw = step.Configuration.Raw
			}
			if err := ValidatePolicyStep(step.Policy, raw); err != nil {
				problems = append(problems, fmt.Sprintf("spec.flows[%d] step %d: %v", fi, si, err))
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Resource: fmt.Sprintf("ApiDefinition %s", def.Name), Problems: problems}
	}
	return nil
}

// ValidateApiPlan checks an ApiPlan spec, including that the security
// configuration variant matches the selected security mode.
func ValidateApiPlan(plan *v1alpha1.ApiPlan) error {
	var problems []string

	if plan.Spec.Name == "" {
		problems = append(problems, "spec.name is required")
	}
	if plan.Spec.APIRef.Name == "" {
		problems = append(problems, "spec.apiRef.name is required")
	}

	switch plan.Spec.Security {
	case v1alpha1.SecurityKeyLess, v1alpha1.SecurityAPIKey, v1alpha1.SecurityJWT,
		v1alpha1.SecurityOAuth2, v1alpha1.SecurityMTLS:
	case "":
		problems = append(problems, "spec.security is required")
	default:
		problems = append(problems, fmt.Sprintf("spec.security %q is not a known security mode", plan.Spec.Security))
	}

	if cfg := plan.Spec.SecurityConfiguration; cfg != nil {
		variant := ""
		variants := 0
		if cfg.JWT != nil {
			variant, variants = "jwt", variants+1
		}
		if cfg.OAuth2 != nil {
			variant, variants = "oauth2", variants+1
		}
		if cfg.APIKey != nil {
			variant, variants = "apiKey", variants+1
		}
		if cfg.MTLS != nil {
			variant, variants = "mtls", variants+1
		}
		if variants > 1 {
			problems = append(problems, "spec.securityConfiguration must set at most one variant")
		} else if variants == 1 && variant != securityVariant(plan.Spec.Security) {
			problems = append(problems, fmt.Sprintf(
				"spec.securityConfiguration.%s does not match security mode %s", variant, plan.Spec.Security))
		}
	}

	if len(plan.Spec.Scopes) > 0 &&
		plan.Spec.Security != v1alpha1.SecurityJWT && plan.Spec.Security != v1alpha1.SecurityOAuth2 {
		problems = append(problems, "spec.scopes are only meaningful for JWT and OAUTH2 plans")
	}

	if len(problems) > 0 {
		return &ValidationError{Resource: fmt.Sprintf("ApiPlan %s", plan.Name), Problems: problems}
	}
	return nil
}

func securityVariant(mode v1alpha1.PlanSecurityType) string {
	switch mode {
	case v1alpha1.SecurityJWT:
		return "jwt"
	case v1alpha1.SecurityOAuth2:
		return "oauth2"
	case v1alpha1.SecurityAPIKey:
		return "apiKey"
	case v1alpha1.SecurityMTLS:
		return "mtls"
	default:
		return ""
	}
}

// ValidateManagementContext checks a ManagementContext spec.
func ValidateManagementContext(mc *v1alpha1.ManagementContext) error {
	var problems []string

	if mc.Spec.BaseURL == "" {
		problems = append(problems, "spec.baseUrl is required")
	} else if u, err := url.Parse(mc.Spec.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("spec.baseUrl must be an absolute URL: %q", mc.Spec.BaseURL))
	}
	if mc.Spec.OrganizationID == "" {
		problems = append(problems, "spec.organizationId is required")
	}
	if mc.Spec.EnvironmentID == "" {
		problems = append(problems, "spec.environmentId is required")
	}

	switch {
	case mc.Spec.Auth.SecretRef == nil && mc.Spec.Auth.Azure == nil:
		problems = append(problems, "spec.auth must set exactly one of secretRef or azure")
	case mc.Spec.Auth.SecretRef != nil && mc.Spec.Auth.Azure != nil:
		problems = append(problems, "spec.auth must set exactly one of secretRef or azure, not both")
	case mc.Spec.Auth.SecretRef != nil && mc.Spec.Auth.SecretRef.Name == "":
		problems = append(problems, "spec.auth.secretRef.name is required")
	case mc.Spec.Auth.Azure != nil:
		if mc.Spec.Auth.Azure.ClientID == "" || mc.Spec.Auth.Azure.TenantID == "" || mc.Spec.Auth.Azure.Audience == "" {
			problems = append(problems, "spec.auth.azure requires clientId, tenantId and audience")
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Resource: fmt.Sprintf("ManagementContext %s", mc.Name), Problems: problems}
	}
	return nil
}

// ContextIndex maps "namespace/name" to ManagementContexts, for offline
// cross-manifest resolution.
type ContextIndex map[string]*v1alpha1.ManagementContext

// IndexKey builds the lookup key used by ContextIndex.
func IndexKey(namespace, name string) string {
	return namespace + "/" + name
}

// ResolveContext resolves an ApiDefinition's contextRef against an index.
func ResolveContext(def *v1alpha1.ApiDefinition, idx ContextIndex) (*v1alpha1.ManagementContext, error) {
	ref := def.ContextKey()
	if mc, ok := idx[IndexKey(ref.Namespace, ref.Name)]; ok {
		return mc, nil
	}
	return nil, &ContextNotFoundError{Ref: ref}
}

var semverRe = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)$`)

// ValidateVersionTransition rejects a version that moves backwards relative
// to the version last applied to the gateway. Versions are ordered only when
// both sides are semver; anything else passes (Lint already flags non-semver
// versions) since there is no defined order to enforce.
func ValidateVersionTransition(lastApplied, next string) error {
	if lastApplied == "" || lastApplied == next {
		return nil
	}
	prev := semverRe.FindStringSubmatch(lastApplied)
	cur := semverRe.FindStringSubmatch(next)
	if prev == nil || cur == nil {
		return nil
	}
	for i := 1; i <= 3; i++ {
		p, _ := strconv.Atoi(prev[i])
		c, _ := strconv.Atoi(cur[i])
		if c > p {
			return nil
		}
		if c < p {
			return &ValidationError{
				Resource: "ApiDefinition",
				Problems: []string{fmt.Sprintf("spec.version must not decrease: %s was already applied, got %s", lastApplied, next)},
			}
		}
	}
	return nil
}

// Warning is a non-fatal best-practice finding from Lint.
type Warning struct {
	Resource string
	Message  string
}

// Lint reports best-practice warnings for an ApiDefinition. Warnings never
// block reconciliation; they are surfaced by the offline validator.
func Lint(def *v1alpha1.ApiDefinition) []Warning {
	var warnings []Warning
	warn := func(format string, args ...any) {
		warnings = append(warnings, Warning{Resource: def.Name, Message: fmt.Sprintf(format, args...)})
	}

	if def.Spec.Version != "" && !semverRe.MatchString(def.Spec.Version) {
		warn("version %q does not follow semver", def.Spec.Version)
	}

	hasRateLimit := false
	for _, flow := range def.Spec.Flows {
		for _, step := range append(append([]v1alpha1.FlowStep{}, flow.Pre...), flow.Post...) {
			switch step.Policy {
			case "rate-limit", "quota":
				hasRateLimit = true
			}
			if step.Policy == "rate-limit" && step.Configuration != nil {
				var cfg RateLimitConfig
				if err := jsonUnmarshal(step.Configuration.Raw, &cfg); err == nil && cfg.Limit > 10000 {
					warn("rate-limit limit %d is unusually high", cfg.Limit)
				}
			}
		}
	}
	if !hasRateLimit {
		warn("no rate limiting policy found")
	}

	for _, group := range def.Spec.Proxy.Groups {
		for _, ep := range group.Endpoints {
			if ep.Target != "" && !strings.HasPrefix(ep.Target, "http://") && !strings.HasPrefix(ep.Target, "https://") {
				warn("endpoint target should be an absolute URL: %q", ep.Target)
			}
		}
	}

	return warnings
}
