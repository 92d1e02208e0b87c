/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// PlanSecurityType is the security mode of a subscription plan.
// +kubebuilder:validation:Enum=KEY_LESS;API_KEY;JWT;OAUTH2;MTLS
type PlanSecurityType string

const (
	SecurityKeyLess PlanSecurityType = "KEY_LESS"
	SecurityAPIKey  PlanSecurityType = "API_KEY"
	SecurityJWT     PlanSecurityType = "JWT"
	SecurityOAuth2  PlanSecurityType = "OAUTH2"
	SecurityMTLS    PlanSecurityType = "MTLS"
)

// PlanStatus is the publication status of a plan.
// +kubebuilder:validation:Enum=DRAFT;PUBLISHED;DEPRECATED
type PlanStatus string

const (
	PlanDraft      PlanStatus = "DRAFT"
	PlanPublished  PlanStatus = "PUBLISHED"
	PlanDeprecated PlanStatus = "DEPRECATED"
)

// ApiPlanSpec defines a subscription plan attached to exactly one
// ApiDefinition. The plan's lifecycle is bound to its API's existence.
type ApiPlanSpec struct {
	// Name of the plan as shown on the gateway.
	Name string `json:"name"`

	// APIRef is the owning ApiDefinition.
	APIRef ResourceRef `json:"apiRef"`

	// Security mode of the plan.
	Security PlanSecurityType `json:"security"`

	// Status is the desired publication status. Defaults to DRAFT.
	// +optional
	Status PlanStatus `json:"status,omitempty"`

	// Scopes required by subscriptions to this plan.
	// +optional
	Scopes []string `json:"scopes,omitempty"`

	// SecurityConfiguration is the mode-specific configuration. The variant
	// must match the selected security mode.
	// +optional
	SecurityConfiguration *PlanSecurityConfiguration `json:"securityConfiguration,omitempty"`
}

// PlanSecurityConfiguration is a tagged union over the security modes.
type PlanSecurityConfiguration struct {
	// +optional
	JWT *JWTConfiguration `json:"jwt,omitempty"`
	// +optional
	OAuth2 *OAuth2Configuration `json:"oauth2,omitempty"`
	// +optional
	APIKey *APIKeyConfiguration `json:"apiKey,omitempty"`
	// +optional
	MTLS *MTLSConfiguration `json:"mtls,omitempty"`
}

// JWTConfiguration configures JWT validation for a plan.
type JWTConfiguration struct {
	// SignatureAlgorithm, e.g. "RS256".
	SignatureAlgorithm string `json:"signatureAlgorithm,omitempty"`
	// PublicKeyResolver selects where verification keys come from,
	// e.g. "GIVEN_KEY" or "JWKS_URL".
	PublicKeyResolver string `json:"publicKeyResolver,omitempty"`
	// Resolver parameter: the key itself or the JWKS URL.
	ResolverParameter string `json:"resolverParameter,omitempty"`
}

// OAuth2Configuration configures token introspection for a plan.
type OAuth2Configuration struct {
	// AuthorizationServerRef names the configured authorization server.
	AuthorizationServerRef string `json:"authorizationServerRef,omitempty"`
	// CheckRequiredScopes enforces the plan's scopes during introspection.
	CheckRequiredScopes bool `json:"checkRequiredScopes,omitempty"`
}

// APIKeyConfiguration configures API key handling for a plan.
type APIKeyConfiguration struct {
	// PropagateAPIKey forwards the key to the backend when true.
	PropagateAPIKey bool `json:"propagateApiKey,omitempty"`
}

// MTLSConfiguration configures client certificate requirements for a plan.
type MTLSConfiguration struct {
	// ClientCertificateHeader carries the forwarded certificate, if any.
	ClientCertificateHeader string `json:"clientCertificateHeader,omitempty"`
}

// ApiPlanStatus defines the observed state of ApiPlan.
type ApiPlanStatus struct {
	SyncStatus `json:",inline"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="State",type=string,JSONPath=`.status.state`
// +kubebuilder:printcolumn:name="Security",type=string,JSONPath=`.spec.security`
// +kubebuilder:printcolumn:name="API",type=string,JSONPath=`.spec.apiRef.name`

// ApiPlan is the Schema for the apiplans API.
type ApiPlan struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ApiPlanSpec   `json:"spec,omitempty"`
	Status ApiPlanStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// ApiPlanList contains a list of ApiPlan.
type ApiPlanList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []ApiPlan `json:"items"`
}

// APIKey returns the fully-qualified reference to the owning ApiDefinition,
// defaulting the namespace to the plan's own.
func (p *ApiPlan) APIKey() ResourceRef {
	ref := p.Spec.APIRef
	if ref.Namespace == "" {
		ref.Namespace = p.Namespace
	}
	return ref
}

func init() {
	SchemeBuilder.Register(&ApiPlan{}, &ApiPlanList{})
}
