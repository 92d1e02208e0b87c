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
	"fmt"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	v1alpha1 "github.com/apimops/gravitee-apim-operator/api/v1alpha1"
	"github.com/apimops/gravitee-apim-operator/internal/metrics"
	"github.com/apimops/gravitee-apim-operator/internal/model"
)

// dependentsRequeueDelay is how often a terminating context re-checks whether
// its referents are gone. Referent deletion does not trigger an event on the
// context, so polling is the simplest correct option.
const dependentsRequeueDelay = 30 * time.Second

// ManagementContextReconciler validates ManagementContexts and protects them
// from deletion while ApiDefinitions still reference them.
type ManagementContextReconciler struct {
	client.Client
	Scheme *runtime.Scheme
}

// +kubebuilder:rbac:groups=gravitee.apimops.io,resources=managementcontexts,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=gravitee.apimops.io,resources=managementcontexts/status,verbs=get;update;patch
// +kubebuilder:rbac:groups=gravitee.apimops.io,resources=managementcontexts/finalizers,verbs=update

func (r *ManagementContextReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	logger := ctrl.Log.WithName("managementcontext_controller")

	var mc v1alpha1.ManagementContext
	if err := r.Get(ctx, req.NamespacedName, &mc); err != nil {
		if apierrors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		return ctrl.Result{}, err
	}

	if !mc.DeletionTimestamp.IsZero() {
		return r.reconcileDelete(ctx, &mc)
	}

	if !controllerutil.ContainsFinalizer(&mc, contextProtectionFinalizer) {
		controllerutil.AddFinalizer(&mc, contextProtectionFinalizer)
		if err := r.Update(ctx, &mc); err != nil {
			return ctrl.Result{}, err
		}
	}

	logger.Info("🔁 Reconciling ManagementContext",
		"name", mc.Name,
		"namespace", mc.Namespace,
		"baseUrl", mc.Spec.BaseURL,
	)

	if err := model.ValidateManagementContext(&mc); err != nil {
		logger.Error(err, "🚫 ManagementContext spec rejected", "name", mc.Name)
		mc.Status.Phase = phaseError
		mc.Status.Message = err.Error()
		setCondition(&mc.Status.Conditions, mc.Generation, v1alpha1.ConditionReady, metav1.ConditionFalse, v1alpha1.ReasonValidationFailed, err.Error())
		if err := r.Status().Update(ctx, &mc); err != nil {
			return ctrl.Result{}, err
		}
		metrics.ReconcileTotal.WithLabelValues("ManagementContext", phaseError).Inc()
		return ctrl.Result{}, nil
	}

	mc.Status.Phase = phaseReady
	mc.Status.Message = fmt.Sprintf("Targeting %s (org %s, env %s)", mc.Spec.BaseURL, mc.Spec.OrganizationID, mc.Spec.EnvironmentID)
	setCondition(&mc.Status.Conditions, mc.Generation, v1alpha1.ConditionReady, metav1.ConditionTrue, v1alpha1.ReasonSynced, "Context is valid")
	if err := r.Status().Update(ctx, &mc); err != nil {
		logger.Error(err, "⚠️ Failed to update ManagementContext status")
		return ctrl.Result{}, err
	}

	metrics.ReconcileTotal.WithLabelValues("ManagementContext", phaseReady).Inc()
	logger.Info("✅ ManagementContext is ready", "name", mc.Name)
	return ctrl.Result{}, nil
}

// reconcileDelete holds the finalizer until no ApiDefinition references this
// context anymore. Plans are covered transitively: they reference the context
// through their API.
func (r *ManagementContextReconciler) reconcileDelete(ctx context.Context, mc *v1alpha1.ManagementContext) (ctrl.Result, error) {
	logger := ctrl.Log.WithName("managementcontext_controller")

	if !controllerutil.ContainsFinalizer(mc, contextProtectionFinalizer) {
		return ctrl.Result{}, nil
	}

	referents, err := r.referencingDefinitions(ctx, mc)
	if err != nil {
		return ctrl.Result{}, err
	}

	if len(referents) > 0 {
		msg := fmt.Sprintf("%d ApiDefinition(s) still reference this context, e.g. %s", len(referents), referents[0])
		mc.Status.Phase = phaseTerminating
		mc.Status.Message = msg
		setCondition(&mc.Status.Conditions, mc.Generation, v1alpha1.ConditionReady, metav1.ConditionFalse, v1alpha1.ReasonDependentsExist, msg)
		if err := r.Status().Update(ctx, mc); err != nil {
			return ctrl.Result{}, err
		}
		logger.Info("⏳ ManagementContext deletion blocked by referents",
			"name", mc.Name,
			"referents", len(referents),
			"requeueAfter", dependentsRequeueDelay,
		)
		return ctrl.Result{RequeueAfter: dependentsRequeueDelay}, nil
	}

	controllerutil.RemoveFinalizer(mc, contextProtectionFinalizer)
	if err := r.Update(ctx, mc); err != nil {
		return ctrl.Result{}, err
	}
	metrics.ReconcileTotal.WithLabelValues("ManagementContext", "deleted").Inc()
	logger.Info("🧹 ManagementContext released for deletion", "name", mc.Name)
	return ctrl.Result{}, nil
}

// referencingDefinitions returns the keys of ApiDefinitions whose contextRef
// resolves to this context.
func (r *ManagementContextReconciler) referencingDefinitions(ctx context.Context, mc *v1alpha1.ManagementContext) ([]string, error) {
	var list v1alpha1.ApiDefinitionList
	if err := r.List(ctx, &list); err != nil {
		return nil, err
	}

	var keys []string
	for i := range list.Items {
		def := &list.Items[i]
		ref := def.ContextKey()
		if ref.Name == mc.Name && ref.Namespace == mc.Namespace {
			keys = append(keys, client.ObjectKeyFromObject(def).String())
		}
	}
	return keys, nil
}

// SetupWithManager sets up the controller with the Manager.
func (r *ManagementContextReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&v1alpha1.ManagementContext{}).
		Named("managementcontext").
		Complete(r)
}
