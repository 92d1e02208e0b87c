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
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	v1alpha1 "github.com/apimops/gravitee-apim-operator/api/v1alpha1"
	"github.com/apimops/gravitee-apim-operator/internal/gateway"
	"github.com/apimops/gravitee-apim-operator/internal/track"
)

var _ = Describe("ApiDefinition Controller", func() {
	var (
		ctx        context.Context
		k8sClient  client.Client
		gw         *fakeGateway
		reconciler *ApiDefinitionReconciler
		defKey     types.NamespacedName
	)

	reconcile := func() (ctrl.Result, error) {
		return reconciler.Reconcile(ctx, ctrl.Request{NamespacedName: defKey})
	}

	fetch := func() *v1alpha1.ApiDefinition {
		var def v1alpha1.ApiDefinition
		Expect(k8sClient.Get(ctx, defKey, &def)).To(Succeed())
		return &def
	}

	setup := func(objs ...client.Object) {
		k8sClient = newFakeClient(objs...)
		gw = newFakeGateway()
		reconciler = &ApiDefinitionReconciler{
			Client:  k8sClient,
			Records: track.NewStore(),
			Gateway: gw,
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		defKey = types.NamespacedName{Name: "orders-api", Namespace: "default"}
	})

	Context("when the context exists and the gateway is healthy", func() {
		BeforeEach(func() {
			def := newApiDefinition("orders-api", "default", "apim-dev")
			def.Spec.LifecycleState = v1alpha1.LifecyclePublished
			setup(newManagementContext("apim-dev", "default"), def)
		})

		It("should converge to Synced and record the external id", func() {
			result, err := reconcile()
			Expect(err).NotTo(HaveOccurred())
			Expect(result.RequeueAfter).To(BeZero())

			def := fetch()
			Expect(def.Status.State).To(Equal(v1alpha1.StateSynced))
			Expect(def.Status.ExternalID).NotTo(BeEmpty())
			Expect(def.Status.Attempts).To(BeZero())
			Expect(def.Finalizers).To(ContainElement("gravitee.apimops.io/remote-cleanup"))

			ready := findCondition(def.Status.Conditions, v1alpha1.ConditionReady)
			Expect(ready).NotTo(BeNil())
			Expect(ready.Status).To(Equal(metav1.ConditionTrue))

			Expect(gw.callCount("CreateOrUpdateAPI")).To(Equal(1))
		})

		It("should start a PUBLISHED API on the gateway", func() {
			_, err := reconcile()
			Expect(err).NotTo(HaveOccurred())

			def := fetch()
			Expect(gw.callCount("SetAPILifecycle")).To(Equal(1))
			Expect(gw.apis[def.Status.ExternalID].State).To(Equal("STARTED"))
		})

		It("should publish the entry point as the external link annotation", func() {
			_, err := reconcile()
			Expect(err).NotTo(HaveOccurred())

			def := fetch()
			Expect(def.Status.EntrypointURL).To(Equal("https://apim.example.com/orders-api"))
			Expect(def.Annotations).To(HaveKeyWithValue(
				"link.argocd.argoproj.io/external-link", "https://apim.example.com/orders-api"))
		})

		It("should not touch the gateway again when nothing changed", func() {
			_, err := reconcile()
			Expect(err).NotTo(HaveOccurred())
			writesAfterFirst := gw.writeCount()

			_, err = reconcile()
			Expect(err).NotTo(HaveOccurred())
			Expect(gw.writeCount()).To(Equal(writesAfterFirst))
		})

		It("should not issue lifecycle writes after an operator restart", func() {
			_, err := reconcile()
			Expect(err).NotTo(HaveOccurred())
			Expect(gw.callCount("SetAPILifecycle")).To(Equal(1))

			// Fresh record store, as after a restart: the external id is
			// re-seeded from status and the running API stays untouched.
			reconciler = &ApiDefinitionReconciler{Client: k8sClient, Records: track.NewStore(), Gateway: gw}

			_, err = reconcile()
			Expect(err).NotTo(HaveOccurred())
			Expect(fetch().Status.State).To(Equal(v1alpha1.StateSynced))
			Expect(gw.callCount("SetAPILifecycle")).To(Equal(1), "a started API must not be started again")
		})

		It("should reject a decreasing version as a terminal validation error", func() {
			_, err := reconcile()
			Expect(err).NotTo(HaveOccurred())

			def := fetch()
			def.Spec.Version = "0.9.0"
			Expect(k8sClient.Update(ctx, def)).To(Succeed())

			result, err := reconcile()
			Expect(err).NotTo(HaveOccurred())
			Expect(result.RequeueAfter).To(BeZero())

			def = fetch()
			Expect(def.Status.State).To(Equal(v1alpha1.StateError))
			Expect(def.Status.Message).To(ContainSubstring("must not decrease"))
			ready := findCondition(def.Status.Conditions, v1alpha1.ConditionReady)
			Expect(ready.Reason).To(Equal(v1alpha1.ReasonValidationFailed))

			// Moving forward again recovers.
			def.Spec.Version = "1.0.1"
			Expect(k8sClient.Update(ctx, def)).To(Succeed())
			_, err = reconcile()
			Expect(err).NotTo(HaveOccurred())
			Expect(fetch().Status.State).To(Equal(v1alpha1.StateSynced))
		})

		It("should adopt a remote API with the same name instead of duplicating it", func() {
			gw.apis["api-preexisting"] = &gateway.API{ID: "api-preexisting", Name: "orders-api", Version: "0.9.0"}

			_, err := reconcile()
			Expect(err).NotTo(HaveOccurred())

			def := fetch()
			Expect(def.Status.ExternalID).To(Equal("api-preexisting"))
			Expect(gw.apis).To(HaveLen(1))
		})
	})

	Context("when the management base URL is plain http", func() {
		BeforeEach(func() {
			mc := newManagementContext("apim-dev", "default")
			mc.Spec.BaseURL = "http://apim.internal:8083"
			setup(mc, newApiDefinition("orders-api", "default", "apim-dev"))
		})

		It("should derive the entry point with the base URL's scheme", func() {
			_, err := reconcile()
			Expect(err).NotTo(HaveOccurred())

			def := fetch()
			Expect(def.Status.EntrypointURL).To(Equal("http://apim.internal:8083/orders-api"))
		})
	})

	Context("when the referenced ManagementContext is missing", func() {
		BeforeEach(func() {
			setup(newApiDefinition("orders-api", "default", "apim-missing"))
		})

		It("should block with a DependencyMissing condition and never call the gateway", func() {
			result, err := reconcile()
			Expect(err).NotTo(HaveOccurred())
			Expect(result.RequeueAfter).To(Equal(5 * time.Second))

			def := fetch()
			Expect(def.Status.State).To(Equal(v1alpha1.StateBlocked))

			dep := findCondition(def.Status.Conditions, v1alpha1.ConditionDependencyMissing)
			Expect(dep).NotTo(BeNil())
			Expect(dep.Status).To(Equal(metav1.ConditionTrue))
			Expect(dep.Reason).To(Equal(v1alpha1.ReasonContextNotFound))

			Expect(gw.writeCount()).To(BeZero())
			Expect(gw.callCount("FindAPIByName")).To(BeZero())
		})

		It("should back off on repeated waits without exhausting a budget", func() {
			first, err := reconcile()
			Expect(err).NotTo(HaveOccurred())
			second, err := reconcile()
			Expect(err).NotTo(HaveOccurred())
			third, err := reconcile()
			Expect(err).NotTo(HaveOccurred())

			Expect(first.RequeueAfter).To(Equal(5 * time.Second))
			Expect(second.RequeueAfter).To(Equal(10 * time.Second))
			Expect(third.RequeueAfter).To(Equal(20 * time.Second))

			Expect(fetch().Status.State).To(Equal(v1alpha1.StateBlocked))
		})

		It("should recover once the context appears", func() {
			_, err := reconcile()
			Expect(err).NotTo(HaveOccurred())

			Expect(k8sClient.Create(ctx, newManagementContext("apim-missing", "default"))).To(Succeed())

			result, err := reconcile()
			Expect(err).NotTo(HaveOccurred())
			Expect(result.RequeueAfter).To(BeZero())

			def := fetch()
			Expect(def.Status.State).To(Equal(v1alpha1.StateSynced))
			dep := findCondition(def.Status.Conditions, v1alpha1.ConditionDependencyMissing)
			Expect(dep.Status).To(Equal(metav1.ConditionFalse))
		})
	})

	Context("when the spec is invalid", func() {
		BeforeEach(func() {
			def := newApiDefinition("orders-api", "default", "apim-dev")
			def.Spec.Proxy.VirtualHosts[0].Path = "no-leading-slash"
			setup(newManagementContext("apim-dev", "default"), def)
		})

		It("should go terminal without retrying or calling the gateway", func() {
			result, err := reconcile()
			Expect(err).NotTo(HaveOccurred())
			Expect(result.RequeueAfter).To(BeZero())

			def := fetch()
			Expect(def.Status.State).To(Equal(v1alpha1.StateError))

			ready := findCondition(def.Status.Conditions, v1alpha1.ConditionReady)
			Expect(ready.Reason).To(Equal(v1alpha1.ReasonValidationFailed))

			Expect(gw.writeCount()).To(BeZero())
		})
	})

	Context("when the gateway rejects the payload permanently", func() {
		BeforeEach(func() {
			setup(newManagementContext("apim-dev", "default"), newApiDefinition("orders-api", "default", "apim-dev"))
			gw.createAPIErr = &gateway.RemoteError{Op: "POST apis", StatusCode: 400, Body: "bad payload"}
		})

		It("should go terminal after a single attempt", func() {
			result, err := reconcile()
			Expect(err).NotTo(HaveOccurred())
			Expect(result.RequeueAfter).To(BeZero())

			def := fetch()
			Expect(def.Status.State).To(Equal(v1alpha1.StateError))
			Expect(def.Status.Attempts).To(Equal(int32(1)))

			remote := findCondition(def.Status.Conditions, v1alpha1.ConditionRemoteError)
			Expect(remote).NotTo(BeNil())
			Expect(remote.Status).To(Equal(metav1.ConditionTrue))
			Expect(remote.Reason).To(Equal(v1alpha1.ReasonRemotePermanent))

			Expect(gw.callCount("CreateOrUpdateAPI")).To(Equal(1))
		})
	})

	Context("when the gateway keeps failing transiently", func() {
		BeforeEach(func() {
			setup(newManagementContext("apim-dev", "default"), newApiDefinition("orders-api", "default", "apim-dev"))
			gw.createAPIErr = &gateway.RemoteError{Op: "POST apis", StatusCode: 503, Body: "unavailable"}
		})

		It("should retry with growing backoff and mark Failing", func() {
			first, err := reconcile()
			Expect(err).NotTo(HaveOccurred())
			Expect(first.RequeueAfter).To(Equal(5 * time.Second))

			second, err := reconcile()
			Expect(err).NotTo(HaveOccurred())
			Expect(second.RequeueAfter).To(Equal(10 * time.Second))

			def := fetch()
			Expect(def.Status.State).To(Equal(v1alpha1.StateFailing))
			Expect(def.Status.Attempts).To(Equal(int32(2)))

			remote := findCondition(def.Status.Conditions, v1alpha1.ConditionRemoteError)
			Expect(remote.Reason).To(Equal(v1alpha1.ReasonRemoteTransient))
		})

		It("should give up after the retry budget and go terminal", func() {
			var last ctrl.Result
			for i := 0; i < track.MaxAttempts; i++ {
				var err error
				last, err = reconcile()
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(last.RequeueAfter).To(BeZero(), "terminal state must not requeue")

			def := fetch()
			Expect(def.Status.State).To(Equal(v1alpha1.StateError))
			Expect(def.Status.Attempts).To(Equal(int32(track.MaxAttempts)))

			ready := findCondition(def.Status.Conditions, v1alpha1.ConditionReady)
			Expect(ready.Reason).To(Equal(v1alpha1.ReasonRetriesExhausted))
			Expect(gw.callCount("CreateOrUpdateAPI")).To(Equal(track.MaxAttempts))
		})

		It("should reset the retry budget when the spec changes", func() {
			_, err := reconcile()
			Expect(err).NotTo(HaveOccurred())
			Expect(fetch().Status.Attempts).To(Equal(int32(1)))

			def := fetch()
			def.Spec.Version = "1.0.1"
			Expect(k8sClient.Update(ctx, def)).To(Succeed())
			gw.createAPIErr = nil

			result, err := reconcile()
			Expect(err).NotTo(HaveOccurred())
			Expect(result.RequeueAfter).To(BeZero())
			Expect(fetch().Status.State).To(Equal(v1alpha1.StateSynced))
		})
	})

	Context("when the resource is deleted", func() {
		BeforeEach(func() {
			setup(newManagementContext("apim-dev", "default"), newApiDefinition("orders-api", "default", "apim-dev"))
		})

		It("should delete the remote API before releasing the finalizer", func() {
			_, err := reconcile()
			Expect(err).NotTo(HaveOccurred())
			def := fetch()
			externalID := def.Status.ExternalID
			Expect(gw.apis).To(HaveKey(externalID))

			Expect(k8sClient.Delete(ctx, def)).To(Succeed())
			_, err = reconcile()
			Expect(err).NotTo(HaveOccurred())

			Expect(gw.callCount("DeleteAPI")).To(Equal(1))
			Expect(gw.apis).NotTo(HaveKey(externalID))

			var gone v1alpha1.ApiDefinition
			Expect(apierrors.IsNotFound(k8sClient.Get(ctx, defKey, &gone))).To(BeTrue())
		})

		It("should keep the finalizer while the remote delete fails", func() {
			_, err := reconcile()
			Expect(err).NotTo(HaveOccurred())

			gw.deleteAPIErr = &gateway.RemoteError{Op: "DELETE api", StatusCode: 503}
			Expect(k8sClient.Delete(ctx, fetch())).To(Succeed())

			result, err := reconcile()
			Expect(err).NotTo(HaveOccurred())
			Expect(result.RequeueAfter).To(BeNumerically(">", 0))
			Expect(fetch().Finalizers).To(ContainElement("gravitee.apimops.io/remote-cleanup"))

			gw.deleteAPIErr = nil
			_, err = reconcile()
			Expect(err).NotTo(HaveOccurred())

			var gone v1alpha1.ApiDefinition
			Expect(apierrors.IsNotFound(k8sClient.Get(ctx, defKey, &gone))).To(BeTrue())
		})
	})
})
