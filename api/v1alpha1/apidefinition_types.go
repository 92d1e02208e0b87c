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
	"k8s.io/apimachinery/pkg/runtime"
)

// LifecycleState controls whether the API is started on the gateway.
// +kubebuilder:validation:Enum=CREATED;PUBLISHED;UNPUBLISHED;DEPRECATED
type LifecycleState string

const (
	LifecycleCreated     LifecycleState = "CREATED"
	LifecyclePublished   LifecycleState = "PUBLISHED"
	LifecycleUnpublished LifecycleState = "UNPUBLISHED"
	LifecycleDeprecated  LifecycleState = "DEPRECATED"
)

// ApiDefinitionSpec defines the desired API on the gateway.
type ApiDefinitionSpec struct {
	// Name of the API as shown on the gateway.
	Name string `json:"name"`

	// Version of the API. Changes are expected to be monotonic per name.
	Version string `json:"version"`

	// ContextRef resolves to the ManagementContext describing the target
	// gateway. The reference is lookup-only: many ApiDefinitions may share
	// one context.
	ContextRef ResourceRef `json:"contextRef"`

	// LifecycleState of the API. PUBLISHED APIs are started on the gateway,
	// UNPUBLISHED and DEPRECATED ones are stopped. Defaults to CREATED.
	// +optional
	LifecycleState LifecycleState `json:"lifecycleState,omitempty"`

	// Proxy describes how the gateway exposes and routes the API.
	Proxy Proxy `json:"proxy"`

	// Flows are ordered request/response policy chains.
	// +optional
	Flows []Flow `json:"flows,omitempty"`
}

// Proxy holds the routing configuration: entry points and backends.
type Proxy struct {
	// VirtualHosts are the gateway entry points. Order is meaningful.
	VirtualHosts []VirtualHost `json:"virtualHosts"`

	// Groups are named backend endpoint groups. Order is meaningful.
	Groups []EndpointGroup `json:"groups"`
}

// VirtualHost is one gateway entry point.
type VirtualHost struct {
	// Host restricts the entry point to a listener host. Optional.
	Host string `json:"host,omitempty"`
	// Path is the context path, must start with "/".
	Path string `json:"path"`
}

// EndpointGroup is a named group of backend endpoints.
type EndpointGroup struct {
	Name      string     `json:"name"`
	Endpoints []Endpoint `json:"endpoints"`
}

// Endpoint is a single backend target.
type Endpoint struct {
	Name string `json:"name"`
	// Target is the absolute backend URL.
	Target string `json:"target"`
}

// FlowOperator selects how a flow path matches incoming requests.
// +kubebuilder:validation:Enum=STARTS_WITH;EQUALS
type FlowOperator string

const (
	OperatorStartsWith FlowOperator = "STARTS_WITH"
	OperatorEquals     FlowOperator = "EQUALS"
)

// PathOperator matches a request path against a flow.
type PathOperator struct {
	Path string `json:"path"`
	// +optional
	Operator FlowOperator `json:"operator,omitempty"`
}

// Flow is an ordered policy chain applied to matching requests.
type Flow struct {
	// +optional
	Name         string       `json:"name,omitempty"`
	PathOperator PathOperator `json:"pathOperator"`
	// Pre policies run on the request before it reaches the backend.
	// +optional
	Pre []FlowStep `json:"pre,omitempty"`
	// Post policies run on the response.
	// +optional
	Post []FlowStep `json:"post,omitempty"`
}

// FlowStep is one policy invocation. Policy names form a closed set; unknown
// names are rejected at validation time instead of being passed through.
type FlowStep struct {
	// +optional
	Name string `json:"name,omitempty"`
	// Policy is the policy identifier, e.g. "rate-limit".
	Policy string `json:"policy"`
	// Enabled defaults to true.
	// +optional
	Enabled *bool `json:"enabled,omitempty"`
	// Configuration is the policy-specific configuration, validated against
	// the typed schema registered for the policy name.
	// +optional
	// +kubebuilder:pruning:PreserveUnknownFields
	Configuration *runtime.RawExtension `json:"configuration,omitempty"`
}

// ApiDefinitionStatus defines the observed state of ApiDefinition.
type ApiDefinitionStatus struct {
	SyncStatus `json:",inline"`

	// EntrypointURL is the resolved gateway entry point for the first
	// virtual host, published as the ArgoCD external link.
	EntrypointURL string `json:"entrypointUrl,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="State",type=string,JSONPath=`.status.state`
// +kubebuilder:printcolumn:name="ExternalID",type=string,JSONPath=`.status.externalId`
// +kubebuilder:printcolumn:name="Version",type=string,JSONPath=`.spec.version`

// ApiDefinition is the Schema for the apidefinitions API.
type ApiDefinition struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ApiDefinitionSpec   `json:"spec,omitempty"`
	Status ApiDefinitionStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// ApiDefinitionList contains a list of ApiDefinition.
type ApiDefinitionList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []ApiDefinition `json:"items"`
}

// ContextKey returns the fully-qualified reference to the ManagementContext,
// defaulting the namespace to the ApiDefinition's own.
func (a *ApiDefinition) ContextKey() ResourceRef {
	ref := a.Spec.ContextRef
	if ref.Namespace == "" {
		ref.Namespace = a.Namespace
	}
	return ref
}

func init() {
	SchemeBuilder.Register(&ApiDefinition{}, &ApiDefinitionList{})
}
