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

var _ = Describe("ApiPlan Controller", func() {
	var (
		ctx           context.Context
		k8sClient     client.Client
		gw            *fakeGateway
		records       *track.Store
		defReconciler *ApiDefinitionReconciler
		reconciler    *ApiPlanReconciler
		planKey       types.NamespacedName
		defKey        types.NamespacedName
	)

	reconcilePlan := func() (ctrl.Result, error) {
		return reconciler.Reconcile(ctx, ctrl.Request{NamespacedName: planKey})
	}

	syncParent := func() {
		_, err := defReconciler.Reconcile(ctx, ctrl.Request{NamespacedName: defKey})
		Expect(err).NotTo(HaveOccurred())

		var def v1alpha1.ApiDefinition
		Expect(k8sClient.Get(ctx, defKey, &def)).To(Succeed())
		Expect(def.Status.State).To(Equal(v1alpha1.StateSynced))
	}

	fetchPlan := func() *v1alpha1.ApiPlan {
		var plan v1alpha1.ApiPlan
		Expect(k8sClient.Get(ctx, planKey, &plan)).To(Succeed())
		return &plan
	}

	setup := func(objs ...client.Object) {
		k8sClient = newFakeClient(objs...)
		gw = newFakeGateway()
		records = track.NewStore()
		defReconciler = &ApiDefinitionReconciler{Client: k8sClient, Records: records, Gateway: gw}
		reconciler = &ApiPlanReconciler{Client: k8sClient, Records: records, Gateway: gw}
	}

	BeforeEach(func() {
		ctx = context.Background()
		planKey = types.NamespacedName{Name: "orders-gold", Namespace: "default"}
		defKey = types.NamespacedName{Name: "orders-api", Namespace: "default"}
	})

	Context("when the parent API has not been synced yet", func() {
		BeforeEach(func() {
			setup(
				newManagementContext("apim-dev", "default"),
				newApiDefinition("orders-api", "default", "apim-dev"),
				newApiPlan("orders-gold", "default", "orders-api"),
			)
		})

		It("should hold the plan Pending, not Blocked", func() {
			result, err := reconcilePlan()
			Expect(err).NotTo(HaveOccurred())
			Expect(result.RequeueAfter).To(Equal(5 * time.Second))

			plan := fetchPlan()
			Expect(plan.Status.State).To(Equal(v1alpha1.StatePending))

			dep := findCondition(plan.Status.Conditions, v1alpha1.ConditionDependencyMissing)
			Expect(dep).NotTo(BeNil())
			Expect(dep.Status).To(Equal(metav1.ConditionTrue))
			Expect(dep.Reason).To(Equal(v1alpha1.ReasonParentNotSynced))

			Expect(gw.callCount("CreateOrUpdatePlan")).To(BeZero())
		})

		It("should sync once the parent reaches Synced", func() {
			_, err := reconcilePlan()
			Expect(err).NotTo(HaveOccurred())
			Expect(fetchPlan().Status.State).To(Equal(v1alpha1.StatePending))

			syncParent()

			result, err := reconcilePlan()
			Expect(err).NotTo(HaveOccurred())
			Expect(result.RequeueAfter).To(BeZero())

			plan := fetchPlan()
			Expect(plan.Status.State).To(Equal(v1alpha1.StateSynced))
			Expect(plan.Status.ExternalID).NotTo(BeEmpty())

			var def v1alpha1.ApiDefinition
			Expect(k8sClient.Get(ctx, defKey, &def)).To(Succeed())
			Expect(gw.plans[def.Status.ExternalID]).To(HaveKey(plan.Status.ExternalID))
		})
	})

	Context("when the plan shares its namespace/name with the API", func() {
		BeforeEach(func() {
			planKey = types.NamespacedName{Name: "orders", Namespace: "default"}
			defKey = types.NamespacedName{Name: "orders", Namespace: "default"}
			setup(
				newManagementContext("apim-dev", "default"),
				newApiDefinition("orders", "default", "apim-dev"),
				newApiPlan("orders", "default", "orders"),
			)
			syncParent()
		})

		It("should keep separate records for the two kinds", func() {
			result, err := reconcilePlan()
			Expect(err).NotTo(HaveOccurred())
			Expect(result.RequeueAfter).To(BeZero())

			plan := fetchPlan()
			Expect(plan.Status.State).To(Equal(v1alpha1.StateSynced))
			Expect(plan.Status.ExternalID).NotTo(BeEmpty())
			Expect(gw.callCount("CreateOrUpdatePlan")).To(Equal(1))

			var def v1alpha1.ApiDefinition
			Expect(k8sClient.Get(ctx, defKey, &def)).To(Succeed())
			Expect(plan.Status.ExternalID).NotTo(Equal(def.Status.ExternalID))
			Expect(gw.plans[def.Status.ExternalID]).To(HaveKey(plan.Status.ExternalID))
		})
	})

	Context("when the parent API does not exist", func() {
		BeforeEach(func() {
			setup(
				newManagementContext("apim-dev", "default"),
				newApiPlan("orders-gold", "default", "orders-api"),
			)
		})

		It("should block with a ParentNotFound condition", func() {
			result, err := reconcilePlan()
			Expect(err).NotTo(HaveOccurred())
			Expect(result.RequeueAfter).To(Equal(5 * time.Second))

			plan := fetchPlan()
			Expect(plan.Status.State).To(Equal(v1alpha1.StateBlocked))

			dep := findCondition(plan.Status.Conditions, v1alpha1.ConditionDependencyMissing)
			Expect(dep.Reason).To(Equal(v1alpha1.ReasonParentNotFound))
		})
	})

	Context("when the plan spec is invalid", func() {
		BeforeEach(func() {
			plan := newApiPlan("orders-gold", "default", "orders-api")
			plan.Spec.Security = "PASSWORD"
			setup(
				newManagementContext("apim-dev", "default"),
				newApiDefinition("orders-api", "default", "apim-dev"),
				plan,
			)
		})

		It("should go terminal without touching the gateway", func() {
			result, err := reconcilePlan()
			Expect(err).NotTo(HaveOccurred())
			Expect(result.RequeueAfter).To(BeZero())

			plan := fetchPlan()
			Expect(plan.Status.State).To(Equal(v1alpha1.StateError))
			Expect(gw.writeCount()).To(BeZero())
		})
	})

	Context("when the gateway fails transiently", func() {
		BeforeEach(func() {
			setup(
				newManagementContext("apim-dev", "default"),
				newApiDefinition("orders-api", "default", "apim-dev"),
				newApiPlan("orders-gold", "default", "orders-api"),
			)
			syncParent()
			gw.createPlanErr = &gateway.RemoteError{Op: "POST plans", StatusCode: 503}
		})

		It("should mark Failing and requeue with backoff", func() {
			result, err := reconcilePlan()
			Expect(err).NotTo(HaveOccurred())
			Expect(result.RequeueAfter).To(Equal(5 * time.Second))

			plan := fetchPlan()
			Expect(plan.Status.State).To(Equal(v1alpha1.StateFailing))
			Expect(plan.Status.Attempts).To(Equal(int32(1)))
		})

		It("should converge once the gateway recovers", func() {
			_, err := reconcilePlan()
			Expect(err).NotTo(HaveOccurred())

			gw.createPlanErr = nil
			result, err := reconcilePlan()
			Expect(err).NotTo(HaveOccurred())
			Expect(result.RequeueAfter).To(BeZero())
			Expect(fetchPlan().Status.State).To(Equal(v1alpha1.StateSynced))
		})
	})

	Context("when the plan is deleted", func() {
		BeforeEach(func() {
			setup(
				newManagementContext("apim-dev", "default"),
				newApiDefinition("orders-api", "default", "apim-dev"),
				newApiPlan("orders-gold", "default", "orders-api"),
			)
			syncParent()
		})

		It("should delete the remote plan before releasing the finalizer", func() {
			_, err := reconcilePlan()
			Expect(err).NotTo(HaveOccurred())
			plan := fetchPlan()
			Expect(plan.Status.State).To(Equal(v1alpha1.StateSynced))

			Expect(k8sClient.Delete(ctx, plan)).To(Succeed())
			_, err = reconcilePlan()
			Expect(err).NotTo(HaveOccurred())

			Expect(gw.callCount("DeletePlan")).To(Equal(1))

			var gone v1alpha1.ApiPlan
			Expect(apierrors.IsNotFound(k8sClient.Get(ctx, planKey, &gone))).To(BeTrue())
		})
	})
})
