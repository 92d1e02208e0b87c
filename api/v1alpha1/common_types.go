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

// ResourceRef points at another custom resource by name. When Namespace is
// empty the referrer's namespace is assumed.
type ResourceRef struct {
	// Name of the referenced resource.
	Name string `json:"name"`
	// Namespace of the referenced resource. Defaults to the namespace of the
	// referencing resource.
	Namespace string `json:"namespace,omitempty"`
}

// SyncState is the reconciliation state of a desired-state resource.
// +kubebuilder:validation:Enum=Pending;Resolving;Applying;Synced;Blocked;Failing;Error
type SyncState string

const (
	// StatePending means the resource has been seen but not yet processed,
	// or is waiting for a dependency that exists but is not ready.
	StatePending SyncState = "Pending"
	// StateResolving means dependency lookup is in progress.
	StateResolving SyncState = "Resolving"
	// StateApplying means a remote call is in flight.
	StateApplying SyncState = "Applying"
	// StateSynced means the remote representation matches the desired spec.
	StateSynced SyncState = "Synced"
	// StateBlocked means a dependency is missing; reconciliation retries with backoff.
	StateBlocked SyncState = "Blocked"
	// StateFailing means the last remote call errored transiently; a retry is scheduled.
	StateFailing SyncState = "Failing"
	// StateError is terminal: a permanent rejection or the retry budget is
	// exhausted. External intervention (a spec change) is required.
	StateError SyncState = "Error"
)

// Condition types written by the operator.
const (
	ConditionReady             = "Ready"
	ConditionDependencyMissing = "DependencyMissing"
	ConditionRemoteError       = "RemoteError"
)

// Condition reasons.
const (
	ReasonSynced            = "Synced"
	ReasonValidationFailed  = "ValidationFailed"
	ReasonContextNotFound   = "ContextNotFound"
	ReasonParentNotFound    = "ParentNotFound"
	ReasonParentNotSynced   = "ParentNotSynced"
	ReasonCredentialsFailed = "CredentialsFailed"
	ReasonRemoteTransient   = "RemoteTransient"
	ReasonRemotePermanent   = "RemotePermanent"
	ReasonRetriesExhausted  = "RetriesExhausted"
	ReasonDependentsExist   = "DependentsExist"
)

// SyncStatus is the status block shared by ApiDefinition and ApiPlan.
type SyncStatus struct {
	// State is the current reconciliation state.
	State SyncState `json:"state,omitempty"`

	// ExternalID is the identifier assigned by the management API on first
	// successful creation. It is used for subsequent update and delete calls
	// and to re-seed the reconciler after a restart.
	ExternalID string `json:"externalId,omitempty"`

	// ObservedGeneration is the generation last applied to the gateway.
	ObservedGeneration int64 `json:"observedGeneration,omitempty"`

	// Attempts counts consecutive failed remote calls for the current generation.
	Attempts int32 `json:"attempts,omitempty"`

	// Message is a human-readable explanation of the current state.
	Message string `json:"message,omitempty"`

	// Conditions describe the resource state for external observers.
	// +optional
	// +listType=map
	// +listMapKey=type
	Conditions []metav1.Condition `json:"conditions,omitempty"`
}
