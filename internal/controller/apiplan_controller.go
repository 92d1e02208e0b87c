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

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	v1alpha1 "github.com/apimops/gravitee-apim-operator/api/v1alpha1"
	"github.com/apimops/gravitee-apim-operator/internal/gateway"
	"github.com/apimops/gravitee-apim-operator/internal/metrics"
	"github.com/apimops/gravitee-apim-operator/internal/model"
	"github.com/apimops/gravitee-apim-operator/internal/track"
)

// ApiPlanReconciler converges ApiPlan resources under their owning
// ApiDefinition. A plan never reaches Synced before its parent has: plans of
// an unsynced API are held Pending — the dependency exists but is not ready,
// a distinct condition from Blocked for observability.
type ApiPlanReconciler struct {
	client.Client
	Scheme  *runtime.Scheme
	Records *track.Store
	Gateway GatewayProvider
}

// +kubebuilder:rbac:groups=gravitee.apimops.io,resources=apiplans,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=gravitee.apimops.io,resources=apiplans/status,verbs=get;update;patch
// +kubebuilder:rbac:groups=gravitee.apimops.io,resources=apiplans/finalizers,verbs=update
// +kubebuilder:rbac:groups=gravitee.apimops.io,resources=apidefinitions,verbs=get;list;watch

func (r *ApiPlanReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	logger := ctrl.Log.WithName("apiplan_controller")

	var plan v1alpha1.ApiPlan
	if err := r.Get(ctx, req.NamespacedName, &plan); err != nil {
		if apierrors.IsNotFound(err) {
			r.Records.Forget(track.Key("ApiPlan", req.NamespacedName.String()))
			return ctrl.Result{}, nil
		}
		logger.Info("ℹ️ Unable to fetch ApiPlan")
		return ctrl.Result{}, err
	}

	rec := r.Records.Ensure(track.Key("ApiPlan", req.NamespacedName.String()))
	if rec.ExternalID == "" && plan.Status.ExternalID != "" {
		rec.ExternalID = plan.Status.ExternalID
	}

	if !plan.DeletionTimestamp.IsZero() {
		return r.reconcileDelete(ctx, &plan, rec)
	}

	if !controllerutil.ContainsFinalizer(&plan, remoteCleanupFinalizer) {
		controllerutil.AddFinalizer(&plan, remoteCleanupFinalizer)
		if err := r.Update(ctx, &plan); err != nil {
			return ctrl.Result{}, err
		}
	}

	if rec.State == v1alpha1.StateSynced && rec.LastAppliedGeneration == plan.Generation {
		logger.Info("✅ ApiPlan already in sync, skipping", "name", plan.Name, "generation", plan.Generation)
		return ctrl.Result{}, nil
	}
	if plan.Generation != rec.ObservedGeneration {
		rec.Attempts = 0
		rec.ObservedGeneration = plan.Generation
	}

	logger.Info("🔁 Reconciling ApiPlan",
		"name", plan.Name,
		"namespace", plan.Namespace,
		"security", plan.Spec.Security,
		"state", rec.State,
		"attempts", rec.Attempts,
	)

	rec.Transition(v1alpha1.StateResolving)

	if err := model.ValidateApiPlan(&plan); err != nil {
		logger.Error(err, "🚫 ApiPlan spec rejected", "name", plan.Name)
		return r.markTerminal(ctx, &plan, rec, v1alpha1.ReasonValidationFailed, err.Error())
	}

	// Resolve the owning ApiDefinition. Missing parent → Blocked; existing
	// but never-synced parent → Pending.
	apiRef := plan.APIKey()
	var parent v1alpha1.ApiDefinition
	if err := r.Get(ctx, client.ObjectKey{Name: apiRef.Name, Namespace: apiRef.Namespace}, &parent); err != nil {
		if !apierrors.IsNotFound(err) {
			return ctrl.Result{}, err
		}
		return r.holdForParent(ctx, &plan, rec, v1alpha1.StateBlocked, v1alpha1.ReasonParentNotFound,
			fmt.Sprintf("api definition %s/%s not found", apiRef.Namespace, apiRef.Name))
	}

	if parent.Status.ExternalID == "" {
		return r.holdForParent(ctx, &plan, rec, v1alpha1.StatePending, v1alpha1.ReasonParentNotSynced,
			fmt.Sprintf("api definition %s has not been synced yet", parent.Name))
	}
	rec.Waits = 0

	ctxRef := parent.ContextKey()
	var mc v1alpha1.ManagementContext
	if err := r.Get(ctx, client.ObjectKey{Name: ctxRef.Name, Namespace: ctxRef.Namespace}, &mc); err != nil {
		if !apierrors.IsNotFound(err) {
			return ctrl.Result{}, err
		}
		return r.holdForParent(ctx, &plan, rec, v1alpha1.StateBlocked, v1alpha1.ReasonContextNotFound,
			fmt.Sprintf("management context %s/%s not found", ctxRef.Namespace, ctxRef.Name))
	}

	gw, err := r.Gateway.ClientFor(ctx, &mc)
	if err != nil {
		return r.markRemoteFailure(ctx, &plan, rec, v1alpha1.ReasonCredentialsFailed, err, true)
	}

	rec.Transition(v1alpha1.StateApplying)

	desired, err := model.DesiredPlan(&plan)
	if err != nil {
		return r.markTerminal(ctx, &plan, rec, v1alpha1.ReasonValidationFailed, err.Error())
	}
	desired.ID = rec.ExternalID

	apiID := parent.Status.ExternalID
	if desired.ID == "" {
		existing, err := gw.FindPlanByName(ctx, apiID, desired.Name)
		if err != nil {
			return r.markRemoteFailure(ctx, &plan, rec, remoteReason(err), err, gateway.IsRetryable(err))
		}
		if existing != nil {
			logger.Info("🔗 Adopting existing plan by name", "name", desired.Name, "planID", existing.ID)
			desired.ID = existing.ID
		}
	}

	externalID, err := gw.CreateOrUpdatePlan(ctx, apiID, desired)
	if err != nil {
		return r.markRemoteFailure(ctx, &plan, rec, remoteReason(err), err, gateway.IsRetryable(err))
	}
	rec.ExternalID = externalID

	rec.Attempts = 0
	rec.LastError = ""
	rec.LastAppliedGeneration = plan.Generation
	rec.ObservedGeneration = plan.Generation
	rec.Transition(v1alpha1.StateSynced)

	plan.Status.State = v1alpha1.StateSynced
	plan.Status.ExternalID = externalID
	plan.Status.ObservedGeneration = plan.Generation
	plan.Status.Attempts = 0
	plan.Status.Message = "Plan is in sync with the gateway"
	syncConditions(&plan.Status.SyncStatus, plan.Generation)

	if err := r.Status().Update(ctx, &plan); err != nil {
		logger.Error(err, "⚠️ Failed to update ApiPlan status")
		return ctrl.Result{}, err
	}

	metrics.ReconcileTotal.WithLabelValues("ApiPlan", string(v1alpha1.StateSynced)).Inc()
	logger.Info("✅ Successfully reconciled ApiPlan", "name", plan.Name, "planID", externalID, "apiID", apiID)
	return ctrl.Result{}, nil
}

// holdForParent parks the plan while its dependency is missing or not ready.
func (r *ApiPlanReconciler) holdForParent(ctx context.Context, plan *v1alpha1.ApiPlan, rec *track.Record, state v1alpha1.SyncState, reason, message string) (ctrl.Result, error) {
	logger := ctrl.Log.WithName("apiplan_controller")

	rec.Waits++
	delay := track.Backoff(rec.Waits)
	rec.Transition(state)

	plan.Status.State = state
	plan.Status.Message = message
	setCondition(&plan.Status.Conditions, plan.Generation, v1alpha1.ConditionDependencyMissing, metav1.ConditionTrue, reason, message)
	setCondition(&plan.Status.Conditions, plan.Generation, v1alpha1.ConditionReady, metav1.ConditionFalse, reason, message)
	if err := r.Status().Update(ctx, plan); err != nil {
		return ctrl.Result{}, err
	}

	metrics.ReconcileTotal.WithLabelValues("ApiPlan", string(state)).Inc()
	logger.Info("⏳ ApiPlan waiting on its API",
		"name", plan.Name,
		"state", state,
		"reason", reason,
		"requeueAfter", delay,
	)
	return ctrl.Result{RequeueAfter: delay}, nil
}

func (r *ApiPlanReconciler) markTerminal(ctx context.Context, plan *v1alpha1.ApiPlan, rec *track.Record, reason, message string) (ctrl.Result, error) {
	rec.LastError = message
	rec.Transition(v1alpha1.StateError)

	plan.Status.State = v1alpha1.StateError
	plan.Status.Message = message
	plan.Status.Attempts = rec.Attempts
	setCondition(&plan.Status.Conditions, plan.Generation, v1alpha1.ConditionReady, metav1.ConditionFalse, reason, message)
	if reason == v1alpha1.ReasonRemotePermanent || reason == v1alpha1.ReasonRetriesExhausted {
		setCondition(&plan.Status.Conditions, plan.Generation, v1alpha1.ConditionRemoteError, metav1.ConditionTrue, reason, message)
	}
	if err := r.Status().Update(ctx, plan); err != nil {
		return ctrl.Result{}, err
	}
	metrics.ReconcileTotal.WithLabelValues("ApiPlan", string(v1alpha1.StateError)).Inc()
	return ctrl.Result{}, nil
}

func (r *ApiPlanReconciler) markRemoteFailure(ctx context.Context, plan *v1alpha1.ApiPlan, rec *track.Record, reason string, cause error, retryable bool) (ctrl.Result, error) {
	logger := ctrl.Log.WithName("apiplan_controller")

	rec.Attempts++
	rec.LastError = cause.Error()

	if !retryable {
		logger.Error(cause, "🚫 Permanent remote rejection", "name", plan.Name, "attempts", rec.Attempts)
		return r.markTerminal(ctx, plan, rec, v1alpha1.ReasonRemotePermanent, cause.Error())
	}
	if rec.Attempts >= track.MaxAttempts {
		logger.Error(cause, "🚫 Retry budget exhausted", "name", plan.Name, "attempts", rec.Attempts)
		msg := fmt.Sprintf("giving up after %d attempts: %v", rec.Attempts, cause)
		return r.markTerminal(ctx, plan, rec, v1alpha1.ReasonRetriesExhausted, msg)
	}

	delay := track.Backoff(rec.Attempts)
	rec.Transition(v1alpha1.StateFailing)

	plan.Status.State = v1alpha1.StateFailing
	plan.Status.Message = cause.Error()
	plan.Status.Attempts = rec.Attempts
	setCondition(&plan.Status.Conditions, plan.Generation, v1alpha1.ConditionRemoteError, metav1.ConditionTrue, reason, cause.Error())
	setCondition(&plan.Status.Conditions, plan.Generation, v1alpha1.ConditionReady, metav1.ConditionFalse, reason, cause.Error())
	if err := r.Status().Update(ctx, plan); err != nil {
		return ctrl.Result{}, err
	}

	metrics.ReconcileTotal.WithLabelValues("ApiPlan", string(v1alpha1.StateFailing)).Inc()
	logger.Error(cause, "⚠️ Remote call failed, will retry",
		"name", plan.Name,
		"attempts", rec.Attempts,
		"requeueAfter", delay,
	)
	return ctrl.Result{RequeueAfter: delay}, nil
}

// reconcileDelete removes the remote plan before releasing the finalizer.
func (r *ApiPlanReconciler) reconcileDelete(ctx context.Context, plan *v1alpha1.ApiPlan, rec *track.Record) (ctrl.Result, error) {
	logger := ctrl.Log.WithName("apiplan_controller")

	if !controllerutil.ContainsFinalizer(plan, remoteCleanupFinalizer) {
		r.Records.Forget(track.Key("ApiPlan", client.ObjectKeyFromObject(plan).String()))
		return ctrl.Result{}, nil
	}

	if rec.ExternalID != "" {
		apiRef := plan.APIKey()
		var parent v1alpha1.ApiDefinition
		err := r.Get(ctx, client.ObjectKey{Name: apiRef.Name, Namespace: apiRef.Namespace}, &parent)
		switch {
		case apierrors.IsNotFound(err) || (err == nil && parent.Status.ExternalID == ""):
			// Parent gone or never synced: the remote API (and its plans)
			// does not exist anymore, nothing to clean up.
			logger.Info("ℹ️ Parent API gone, skipping remote plan cleanup", "name", plan.Name)
		case err != nil:
			return ctrl.Result{}, err
		default:
			ctxRef := parent.ContextKey()
			var mc v1alpha1.ManagementContext
			if err := r.Get(ctx, client.ObjectKey{Name: ctxRef.Name, Namespace: ctxRef.Namespace}, &mc); err != nil {
				if !apierrors.IsNotFound(err) {
					return ctrl.Result{}, err
				}
				logger.Info("⚠️ ManagementContext gone before plan cleanup, releasing finalizer", "name", plan.Name)
			} else {
				gw, err := r.Gateway.ClientFor(ctx, &mc)
				if err != nil {
					rec.Attempts++
					return ctrl.Result{RequeueAfter: track.Backoff(rec.Attempts)}, nil
				}
				if err := gw.DeletePlan(ctx, parent.Status.ExternalID, rec.ExternalID); err != nil {
					rec.Attempts++
					delay := track.Backoff(rec.Attempts)
					logger.Error(err, "⚠️ Remote plan delete failed, will retry",
						"name", plan.Name, "planID", rec.ExternalID, "requeueAfter", delay)
					return ctrl.Result{RequeueAfter: delay}, nil
				}
				logger.Info("🧹 Remote plan deleted", "name", plan.Name, "planID", rec.ExternalID)
			}
		}
	}

	controllerutil.RemoveFinalizer(plan, remoteCleanupFinalizer)
	if err := r.Update(ctx, plan); err != nil {
		return ctrl.Result{}, err
	}
	r.Records.Forget(track.Key("ApiPlan", client.ObjectKeyFromObject(plan).String()))
	metrics.ReconcileTotal.WithLabelValues("ApiPlan", "deleted").Inc()
	return ctrl.Result{}, nil
}

// SetupWithManager sets up the controller with the Manager.
func (r *ApiPlanReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&v1alpha1.ApiPlan{}).
		WithEventFilter(predicate.GenerationChangedPredicate{}).
		Named("apiplan").
		Complete(r)
}
