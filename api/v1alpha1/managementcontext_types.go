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

// ManagementContextSpec identifies one target gateway management endpoint and
// how to authenticate against it. The identity (baseUrl, organization,
// environment) is treated as immutable once ApiDefinitions reference it.
type ManagementContextSpec struct {
	// BaseURL is the root URL of the management API, e.g. "https://apim.example.com".
	BaseURL string `json:"baseUrl"`

	// OrganizationID is the organization the managed environment belongs to.
	OrganizationID string `json:"organizationId"`

	// EnvironmentID is the target environment on the gateway.
	EnvironmentID string `json:"environmentId"`

	// Auth describes how to authenticate management API calls.
	Auth ManagementAuth `json:"auth"`
}

// ManagementAuth selects exactly one credential source.
type ManagementAuth struct {
	// SecretRef points at a Secret carrying either a "bearerToken" key or a
	// "username"/"password" pair.
	// +optional
	SecretRef *SecretRef `json:"secretRef,omitempty"`

	// Azure acquires a bearer token through workload identity for management
	// APIs fronted by Azure AD.
	// +optional
	Azure *AzureAuth `json:"azure,omitempty"`
}

// SecretRef points at a Secret by name. When Namespace is empty the
// ManagementContext's namespace is assumed.
type SecretRef struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace,omitempty"`
}

// AzureAuth holds the workload identity parameters for token acquisition.
type AzureAuth struct {
	// ClientID of the federated identity.
	ClientID string `json:"clientId"`
	// TenantID of the Azure AD tenant.
	TenantID string `json:"tenantId"`
	// Audience is the token audience the management API expects.
	Audience string `json:"audience"`
}

// ManagementContextStatus defines the observed state of ManagementContext.
type ManagementContextStatus struct {
	// Phase indicates lifecycle state like "Ready" or "Error".
	Phase string `json:"phase,omitempty"`

	// Message contains error details or status context.
	Message string `json:"message,omitempty"`

	// Conditions describe the context state for external observers.
	// +optional
	// +listType=map
	// +listMapKey=type
	Conditions []metav1.Condition `json:"conditions,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="Phase",type=string,JSONPath=`.status.phase`
// +kubebuilder:printcolumn:name="BaseURL",type=string,JSONPath=`.spec.baseUrl`

// ManagementContext is the Schema for the managementcontexts API.
type ManagementContext struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ManagementContextSpec   `json:"spec,omitempty"`
	Status ManagementContextStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// ManagementContextList contains a list of ManagementContext.
type ManagementContextList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []ManagementContext `json:"items"`
}

func init() {
	SchemeBuilder.Register(&ManagementContext{}, &ManagementContextList{})
}
