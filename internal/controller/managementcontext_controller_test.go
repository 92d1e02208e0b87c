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

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	v1alpha1 "github.com/apimops/gravitee-apim-operator/api/v1alpha1"
)

var _ = Describe("ManagementContext Controller", func() {
	var (
		ctx        context.Context
		k8sClient  client.Client
		reconciler *ManagementContextReconciler
		mcKey      types.NamespacedName
	)

	reconcile := func() (ctrl.Result, error) {
		return reconciler.Reconcile(ctx, ctrl.Request{NamespacedName: mcKey})
	}

	fetch := func() *v1alpha1.ManagementContext {
		var mc v1alpha1.ManagementContext
		Expect(k8sClient.Get(ctx, mcKey, &mc)).To(Succeed())
		return &mc
	}

	setup := func(objs ...client.Object) {
		k8sClient = newFakeClient(objs...)
		reconciler = &ManagementContextReconciler{Client: k8sClient}
	}

	BeforeEach(func() {
		ctx = context.Background()
		mcKey = types.NamespacedName{Name: "apim-dev", Namespace: "default"}
	})

	Context("with a valid context", func() {
		BeforeEach(func() {
			setup(newManagementContext("apim-dev", "default"))
		})

		It("should become Ready with the protection finalizer", func() {
			_, err := reconcile()
			Expect(err).NotTo(HaveOccurred())

			mc := fetch()
			Expect(mc.Status.Phase).To(Equal("Ready"))
			Expect(mc.Finalizers).To(ContainElement("gravitee.apimops.io/context-protection"))

			ready := findCondition(mc.Status.Conditions, v1alpha1.ConditionReady)
			Expect(ready).NotTo(BeNil())
			Expect(ready.Status).To(Equal(metav1.ConditionTrue))
		})
	})

	Context("with an invalid context", func() {
		BeforeEach(func() {
			mc := newManagementContext("apim-dev", "default")
			mc.Spec.Auth = v1alpha1.ManagementAuth{}
			setup(mc)
		})

		It("should report Error with a ValidationFailed condition", func() {
			_, err := reconcile()
			Expect(err).NotTo(HaveOccurred())

			mc := fetch()
			Expect(mc.Status.Phase).To(Equal("Error"))

			ready := findCondition(mc.Status.Conditions, v1alpha1.ConditionReady)
			Expect(ready.Reason).To(Equal(v1alpha1.ReasonValidationFailed))
		})
	})

	Context("when deleted while ApiDefinitions still reference it", func() {
		BeforeEach(func() {
			setup(
				newManagementContext("apim-dev", "default"),
				newApiDefinition("orders-api", "default", "apim-dev"),
			)
			_, err := reconcile()
			Expect(err).NotTo(HaveOccurred())
		})

		It("should hold the finalizer until the last referent is gone", func() {
			Expect(k8sClient.Delete(ctx, fetch())).To(Succeed())

			result, err := reconcile()
			Expect(err).NotTo(HaveOccurred())
			Expect(result.RequeueAfter).To(BeNumerically(">", 0))

			mc := fetch()
			Expect(mc.Status.Phase).To(Equal("Terminating"))
			Expect(mc.Finalizers).To(ContainElement("gravitee.apimops.io/context-protection"))

			ready := findCondition(mc.Status.Conditions, v1alpha1.ConditionReady)
			Expect(ready.Reason).To(Equal(v1alpha1.ReasonDependentsExist))

			// Remove the referent; the next pass releases the context.
			var def v1alpha1.ApiDefinition
			Expect(k8sClient.Get(ctx, types.NamespacedName{Name: "orders-api", Namespace: "default"}, &def)).To(Succeed())
			Expect(k8sClient.Delete(ctx, &def)).To(Succeed())

			_, err = reconcile()
			Expect(err).NotTo(HaveOccurred())

			var gone v1alpha1.ManagementContext
			Expect(apierrors.IsNotFound(k8sClient.Get(ctx, mcKey, &gone))).To(BeTrue())
		})

		It("should not count definitions bound to other contexts", func() {
			other := newApiDefinition("billing-api", "default", "apim-prod")
			Expect(k8sClient.Create(ctx, other)).To(Succeed())

			var def v1alpha1.ApiDefinition
			Expect(k8sClient.Get(ctx, types.NamespacedName{Name: "orders-api", Namespace: "default"}, &def)).To(Succeed())
			Expect(k8sClient.Delete(ctx, &def)).To(Succeed())

			Expect(k8sClient.Delete(ctx, fetch())).To(Succeed())
			_, err := reconcile()
			Expect(err).NotTo(HaveOccurred())

			var gone v1alpha1.ManagementContext
			Expect(apierrors.IsNotFound(k8sClient.Get(ctx, mcKey, &gone))).To(BeTrue())
		})
	})
})
