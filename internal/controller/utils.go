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

package controller

import (
	"context"

	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	v1alpha1 "github.com/apimops/gravitee-apim-operator/api/v1alpha1"
	"github.com/apimops/gravitee-apim-operator/internal/gateway"
)

// Finalizers used by the controllers.
const (
	// remoteCleanupFinalizer holds ApiDefinitions and ApiPlans until their
	// remote counterpart has been deleted (or confirmed already gone).
	remoteCleanupFinalizer = "gravitee.apimops.io/remote-cleanup"

	// contextProtectionFinalizer holds a ManagementContext while
	// ApiDefinitions still reference it.
	contextProtectionFinalizer = "gravitee.apimops.io/context-protection"
)

// ArgoCD external link annotation, kept for UI integration: the gateway
// entry point of a synced API is linked from the ArgoCD resource view.
const argoExternalLinkAnnotation = "link.argocd.argoproj.io/external-link"

// Phase constants for ManagementContext status tracking.
const (
	phaseReady       = "Ready"
	phaseError       = "Error"
	phaseTerminating = "Terminating"
)

// GatewayProvider builds a management API client for a ManagementContext.
// The production implementation is credentials.Resolver; tests substitute an
// in-memory gateway.
type GatewayProvider interface {
	ClientFor(ctx context.Context, mc *v1alpha1.ManagementContext) (gateway.Interface, error)
}

// setCondition upserts one condition with the observed generation stamped.
func setCondition(conditions *[]metav1.Condition, generation int64, condType string, status metav1.ConditionStatus, reason, message string) {
	meta.SetStatusCondition(conditions, metav1.Condition{
		Type:               condType,
		Status:             status,
		Reason:             reason,
		Message:            message,
		ObservedGeneration: generation,
	})
}

// syncConditions writes the standard condition set for a healthy resource.
func syncConditions(st *v1alpha1.SyncStatus, generation int64) {
	setCondition(&st.Conditions, generation, v1alpha1.ConditionReady, metav1.ConditionTrue, v1alpha1.ReasonSynced, "Remote state matches desired state")
	setCondition(&st.Conditions, generation, v1alpha1.ConditionDependencyMissing, metav1.ConditionFalse, v1alpha1.ReasonSynced, "All references resolved")
	setCondition(&st.Conditions, generation, v1alpha1.ConditionRemoteError, metav1.ConditionFalse, v1alpha1.ReasonSynced, "No remote error")
}
