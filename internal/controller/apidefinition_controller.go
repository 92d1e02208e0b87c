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
	"net/url"

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

// ApiDefinitionReconciler converges ApiDefinition resources against the
// management API referenced by their ManagementContext. Per-resource state
// follows Pending → Resolving → Applying → Synced, with Blocked on a missing
// dependency, Failing on a retryable remote error and a terminal Error state
// for permanent rejections or an exhausted retry budget.
type ApiDefinitionReconciler struct {
	client.Client
	Scheme  *runtime.Scheme
	Records *track.Store
	Gateway GatewayProvider
}

// +kubebuilder:rbac:groups=gravitee.apimops.io,resources=apidefinitions,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=gravitee.apimops.io,resources=apidefinitions/status,verbs=get;update;patch
// +kubebuilder:rbac:groups=gravitee.apimops.io,resources=apidefinitions/finalizers,verbs=update
// +kubebuilder:rbac:groups=gravitee.apimops.io,resources=managementcontexts,verbs=get;list;watch
// +kubebuilder:rbac:groups="",resources=secrets,verbs=get

func (r *ApiDefinitionReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	logger := ctrl.Log.WithName("apidefinition_controller")

	var def v1alpha1.ApiDefinition
	if err := r.Get(ctx, req.NamespacedName, &def); err != nil {
		if apierrors.IsNotFound(err) {
			// Resource and finalizer are gone; remote cleanup already ran.
			r.Records.Forget(track.Key("ApiDefinition", req.NamespacedName.String()))
			return ctrl.Result{}, nil
		}
		logger.Info("ℹ️ Unable to fetch ApiDefinition")
		return ctrl.Result{}, err
	}

	rec := r.Records.Ensure(track.Key("ApiDefinition", req.NamespacedName.String()))
	// Re-seed the record after an operator restart so the remote object is
	// updated in place instead of being re-created by name.
	if rec.ExternalID == "" && def.Status.ExternalID != "" {
		rec.ExternalID = def.Status.ExternalID
	}

	if !def.DeletionTimestamp.IsZero() {
		return r.reconcileDelete(ctx, &def, rec)
	}

	if !controllerutil.ContainsFinalizer(&def, remoteCleanupFinalizer) {
		controllerutil.AddFinalizer(&def, remoteCleanupFinalizer)
		if err := r.Update(ctx, &def); err != nil {
			return ctrl.Result{}, err
		}
	}

	// Idempotence fast path: nothing changed since the last successful apply.
	if rec.State == v1alpha1.StateSynced && rec.LastAppliedGeneration == def.Generation {
		logger.Info("✅ ApiDefinition already in sync, skipping", "name", def.Name, "generation", def.Generation)
		return ctrl.Result{}, nil
	}
	if def.Generation != rec.ObservedGeneration {
		// Spec change: restart the retry budget.
		rec.Attempts = 0
		rec.ObservedGeneration = def.Generation
	}

	logger.Info("🔁 Reconciling ApiDefinition",
		"name", def.Name,
		"namespace", def.Namespace,
		"generation", def.Generation,
		"state", rec.State,
		"attempts", rec.Attempts,
	)

	rec.Transition(v1alpha1.StateResolving)

	if err := model.ValidateApiDefinition(&def); err != nil {
		logger.Error(err, "🚫 ApiDefinition spec rejected", "name", def.Name)
		return r.markTerminal(ctx, &def, rec, v1alpha1.ReasonValidationFailed, err.Error())
	}
	if err := model.ValidateVersionTransition(rec.LastAppliedVersion, def.Spec.Version); err != nil {
		logger.Error(err, "🚫 Version change rejected", "name", def.Name, "lastApplied", rec.LastAppliedVersion)
		return r.markTerminal(ctx, &def, rec, v1alpha1.ReasonValidationFailed, err.Error())
	}

	mc, result, err := r.resolveContext(ctx, &def, rec)
	if mc == nil {
		return result, err
	}

	gw, err := r.Gateway.ClientFor(ctx, mc)
	if err != nil {
		logger.Error(err, "❌ Failed to build management API client", "context", mc.Name)
		return r.markRemoteFailure(ctx, &def, rec, v1alpha1.ReasonCredentialsFailed, err, true)
	}

	rec.Transition(v1alpha1.StateApplying)

	desired, err := model.DesiredAPI(&def)
	if err != nil {
		return r.markTerminal(ctx, &def, rec, v1alpha1.ReasonValidationFailed, err.Error())
	}
	desired.ID = rec.ExternalID

	// First-apply path: no external id recorded yet, adopt by name if the
	// API already exists remotely.
	if desired.ID == "" {
		existing, err := gw.FindAPIByName(ctx, desired.Name)
		if err != nil {
			return r.markRemoteFailure(ctx, &def, rec, v1alpha1.ReasonRemoteTransient, err, gateway.IsRetryable(err))
		}
		if existing != nil {
			logger.Info("🔗 Adopting existing API by name", "name", desired.Name, "apiID", existing.ID)
			desired.ID = existing.ID
		}
	}

	remote, err := gw.CreateOrUpdateAPI(ctx, desired)
	if err != nil {
		return r.markRemoteFailure(ctx, &def, rec, remoteReason(err), err, gateway.IsRetryable(err))
	}
	externalID := remote.ID
	rec.ExternalID = externalID

	// Lifecycle actions are writes too: only issue one when the remote
	// runtime state does not already match the desired lifecycle.
	if action, ok := lifecycleAction(def.Spec.LifecycleState); ok && remote.State != action.RuntimeState() {
		if err := gw.SetAPILifecycle(ctx, externalID, action); err != nil {
			return r.markRemoteFailure(ctx, &def, rec, remoteReason(err), err, gateway.IsRetryable(err))
		}
	}

	rec.Attempts = 0
	rec.LastError = ""
	rec.Transition(v1alpha1.StateSynced)

	def.Status.State = v1alpha1.StateSynced
	def.Status.ExternalID = externalID
	def.Status.ObservedGeneration = def.Generation
	def.Status.Attempts = 0
	def.Status.Message = "API is in sync with the gateway"
	def.Status.EntrypointURL = entrypointURL(mc, &def)
	syncConditions(&def.Status.SyncStatus, def.Generation)

	if err := r.Status().Update(ctx, &def); err != nil {
		logger.Error(err, "⚠️ Failed to update ApiDefinition status")
		return ctrl.Result{}, err
	}

	// Publish the gateway entry point for the ArgoCD UI.
	if def.Status.EntrypointURL != "" {
		annotationPatch := client.MergeFrom(def.DeepCopy())
		if def.Annotations == nil {
			def.Annotations = map[string]string{}
		}
		def.Annotations[argoExternalLinkAnnotation] = def.Status.EntrypointURL
		if err := r.Patch(ctx, &def, annotationPatch); err != nil {
			logger.Error(err, "⚠️ Failed to patch external link annotation")
			return ctrl.Result{}, err
		}
	}
	rec.LastAppliedGeneration = def.Generation
	rec.ObservedGeneration = def.Generation
	rec.LastAppliedVersion = def.Spec.Version

	metrics.ReconcileTotal.WithLabelValues("ApiDefinition", string(v1alpha1.StateSynced)).Inc()
	logger.Info("✅ Successfully reconciled ApiDefinition",
		"name", def.Name,
		"apiID", externalID,
		"entrypoint", def.Status.EntrypointURL,
	)
	return ctrl.Result{}, nil
}

// resolveContext looks up the referenced ManagementContext. A nil context
// return means the caller should return the accompanying result/error.
func (r *ApiDefinitionReconciler) resolveContext(ctx context.Context, def *v1alpha1.ApiDefinition, rec *track.Record) (*v1alpha1.ManagementContext, ctrl.Result, error) {
	logger := ctrl.Log.WithName("apidefinition_controller")

	ref := def.ContextKey()
	var mc v1alpha1.ManagementContext
	err := r.Get(ctx, client.ObjectKey{Name: ref.Name, Namespace: ref.Namespace}, &mc)
	if err == nil {
		rec.Waits = 0
		return &mc, ctrl.Result{}, nil
	}
	if !apierrors.IsNotFound(err) {
		return nil, ctrl.Result{}, err
	}

	rec.Waits++
	delay := track.Backoff(rec.Waits)
	rec.Transition(v1alpha1.StateBlocked)

	def.Status.State = v1alpha1.StateBlocked
	def.Status.Message = fmt.Sprintf("management context %s/%s not found", ref.Namespace, ref.Name)
	setCondition(&def.Status.Conditions, def.Generation, v1alpha1.ConditionDependencyMissing, metav1.ConditionTrue, v1alpha1.ReasonContextNotFound, def.Status.Message)
	setCondition(&def.Status.Conditions, def.Generation, v1alpha1.ConditionReady, metav1.ConditionFalse, v1alpha1.ReasonContextNotFound, def.Status.Message)
	if err := r.Status().Update(ctx, def); err != nil {
		return nil, ctrl.Result{}, err
	}

	metrics.ReconcileTotal.WithLabelValues("ApiDefinition", string(v1alpha1.StateBlocked)).Inc()
	logger.Info("⏳ ApiDefinition blocked on missing context",
		"name", def.Name,
		"context", ref.Name,
		"requeueAfter", delay,
	)
	return nil, ctrl.Result{RequeueAfter: delay}, nil
}

// markTerminal moves the resource to the terminal Error state. Terminal
// errors are not retried; a spec change restarts the machine.
func (r *ApiDefinitionReconciler) markTerminal(ctx context.Context, def *v1alpha1.ApiDefinition, rec *track.Record, reason, message string) (ctrl.Result, error) {
	rec.LastError = message
	rec.Transition(v1alpha1.StateError)

	def.Status.State = v1alpha1.StateError
	def.Status.Message = message
	def.Status.Attempts = rec.Attempts
	setCondition(&def.Status.Conditions, def.Generation, v1alpha1.ConditionReady, metav1.ConditionFalse, reason, message)
	if reason == v1alpha1.ReasonRemotePermanent || reason == v1alpha1.ReasonRetriesExhausted {
		setCondition(&def.Status.Conditions, def.Generation, v1alpha1.ConditionRemoteError, metav1.ConditionTrue, reason, message)
	}
	if err := r.Status().Update(ctx, def); err != nil {
		return ctrl.Result{}, err
	}
	metrics.ReconcileTotal.WithLabelValues("ApiDefinition", string(v1alpha1.StateError)).Inc()
	return ctrl.Result{}, nil
}

// markRemoteFailure handles a failed remote call: retryable failures count
// against the retry budget and requeue with backoff, permanent ones go
// terminal immediately.
func (r *ApiDefinitionReconciler) markRemoteFailure(ctx context.Context, def *v1alpha1.ApiDefinition, rec *track.Record, reason string, cause error, retryable bool) (ctrl.Result, error) {
	logger := ctrl.Log.WithName("apidefinition_controller")

	rec.Attempts++
	rec.LastError = cause.Error()

	if !retryable {
		logger.Error(cause, "🚫 Permanent remote rejection", "name", def.Name, "attempts", rec.Attempts)
		return r.markTerminal(ctx, def, rec, v1alpha1.ReasonRemotePermanent, cause.Error())
	}
	if rec.Attempts >= track.MaxAttempts {
		logger.Error(cause, "🚫 Retry budget exhausted", "name", def.Name, "attempts", rec.Attempts)
		msg := fmt.Sprintf("giving up after %d attempts: %v", rec.Attempts, cause)
		return r.markTerminal(ctx, def, rec, v1alpha1.ReasonRetriesExhausted, msg)
	}

	delay := track.Backoff(rec.Attempts)
	rec.Transition(v1alpha1.StateFailing)

	def.Status.State = v1alpha1.StateFailing
	def.Status.Message = cause.Error()
	def.Status.Attempts = rec.Attempts
	setCondition(&def.Status.Conditions, def.Generation, v1alpha1.ConditionRemoteError, metav1.ConditionTrue, reason, cause.Error())
	setCondition(&def.Status.Conditions, def.Generation, v1alpha1.ConditionReady, metav1.ConditionFalse, reason, cause.Error())
	if err := r.Status().Update(ctx, def); err != nil {
		return ctrl.Result{}, err
	}

	metrics.ReconcileTotal.WithLabelValues("ApiDefinition", string(v1alpha1.StateFailing)).Inc()
	logger.Error(cause, "⚠️ Remote call failed, will retry",
		"name", def.Name,
		"attempts", rec.Attempts,
		"requeueAfter", delay,
	)
	return ctrl.Result{RequeueAfter: delay}, nil
}

// reconcileDelete removes the remote API before releasing the finalizer.
// The record is dropped only once the remote side is confirmed gone.
func (r *ApiDefinitionReconciler) reconcileDelete(ctx context.Context, def *v1alpha1.ApiDefinition, rec *track.Record) (ctrl.Result, error) {
	logger := ctrl.Log.WithName("apidefinition_controller")

	if !controllerutil.ContainsFinalizer(def, remoteCleanupFinalizer) {
		r.Records.Forget(track.Key("ApiDefinition", client.ObjectKeyFromObject(def).String()))
		return ctrl.Result{}, nil
	}

	if rec.ExternalID != "" {
		ref := def.ContextKey()
		var mc v1alpha1.ManagementContext
		if err := r.Get(ctx, client.ObjectKey{Name: ref.Name, Namespace: ref.Namespace}, &mc); err != nil {
			if !apierrors.IsNotFound(err) {
				return ctrl.Result{}, err
			}
			// Context protection normally prevents this ordering; if the
			// context is really gone there is no endpoint left to clean up.
			logger.Info("⚠️ ManagementContext gone before API cleanup, releasing finalizer",
				"name", def.Name, "context", ref.Name)
		} else {
			gw, err := r.Gateway.ClientFor(ctx, &mc)
			if err != nil {
				rec.Attempts++
				return ctrl.Result{RequeueAfter: track.Backoff(rec.Attempts)}, nil
			}
			if err := gw.DeleteAPI(ctx, rec.ExternalID); err != nil {
				rec.Attempts++
				delay := track.Backoff(rec.Attempts)
				logger.Error(err, "⚠️ Remote delete failed, will retry",
					"name", def.Name, "apiID", rec.ExternalID, "requeueAfter", delay)
				return ctrl.Result{RequeueAfter: delay}, nil
			}
			logger.Info("🧹 Remote API deleted", "name", def.Name, "apiID", rec.ExternalID)
		}
	}

	controllerutil.RemoveFinalizer(def, remoteCleanupFinalizer)
	if err := r.Update(ctx, def); err != nil {
		return ctrl.Result{}, err
	}
	r.Records.Forget(track.Key("ApiDefinition", client.ObjectKeyFromObject(def).String()))
	metrics.ReconcileTotal.WithLabelValues("ApiDefinition", "deleted").Inc()
	return ctrl.Result{}, nil
}

// remoteReason maps an error to the condition reason for status reporting.
func remoteReason(err error) string {
	if gateway.IsRetryable(err) {
		return v1alpha1.ReasonRemoteTransient
	}
	return v1alpha1.ReasonRemotePermanent
}

// lifecycleAction maps the desired lifecycle state to a gateway action.
func lifecycleAction(state v1alpha1.LifecycleState) (gateway.LifecycleAction, bool) {
	switch state {
	case v1alpha1.LifecyclePublished:
		return gateway.ActionStart, true
	case v1alpha1.LifecycleUnpublished, v1alpha1.LifecycleDeprecated:
		return gateway.ActionStop, true
	default:
		return "", false
	}
}

// entrypointURL derives the externally reachable URL for the first virtual
// host. A host on the virtual host wins; otherwise the management base URL's
// host is assumed to front the gateway as well. The scheme follows the
// management base URL.
func entrypointURL(mc *v1alpha1.ManagementContext, def *v1alpha1.ApiDefinition) string {
	if len(def.Spec.Proxy.VirtualHosts) == 0 {
		return ""
	}
	vh := def.Spec.Proxy.VirtualHosts[0]
	u, err := url.Parse(mc.Spec.BaseURL)
	scheme := "https"
	if err == nil && u.Scheme != "" {
		scheme = u.Scheme
	}
	if vh.Host != "" {
		return fmt.Sprintf("%s://%s%s", scheme, vh.Host, vh.Path)
	}
	if err != nil || u.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s://%s%s", scheme, u.Host, vh.Path)
}

// SetupWithManager sets up the controller with the Manager.
func (r *ApiDefinitionReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&v1alpha1.ApiDefinition{}).
		WithEventFilter(predicate.Or(
			predicate.GenerationChangedPredicate{},
			predicate.AnnotationChangedPredicate{},
		)).
		Named("apidefinition").
		Complete(r)
}
