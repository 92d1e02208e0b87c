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
	"sync"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	v1alpha1 "github.com/apimops/gravitee-apim-operator/api/v1alpha1"
	"github.com/apimops/gravitee-apim-operator/internal/gateway"
)

func TestControllers(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Controller Suite")
}

func newScheme() *runtime.Scheme {
	scheme := runtime.NewScheme()
	Expect(clientgoscheme.AddToScheme(scheme)).To(Succeed())
	Expect(v1alpha1.AddToScheme(scheme)).To(Succeed())
	return scheme
}

func newFakeClient(objs ...client.Object) client.Client {
	return fake.NewClientBuilder().
		WithScheme(newScheme()).
		WithStatusSubresource(&v1alpha1.ApiDefinition{}, &v1alpha1.ApiPlan{}, &v1alpha1.ManagementContext{}).
		WithObjects(objs...).
		Build()
}

func newManagementContext(name, namespace string) *v1alpha1.ManagementContext {
	return &v1alpha1.ManagementContext{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Spec: v1alpha1.ManagementContextSpec{
			BaseURL:        "https://apim.example.com",
			OrganizationID: "acme",
			EnvironmentID:  "dev",
			Auth: v1alpha1.ManagementAuth{
				SecretRef: &v1alpha1.SecretRef{Name: "apim-credentials"},
			},
		},
	}
}

func newApiDefinition(name, namespace, contextName string) *v1alpha1.ApiDefinition {
	return &v1alpha1.ApiDefinition{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Spec: v1alpha1.ApiDefinitionSpec{
			Name:       name,
			Version:    "1.0.0",
			ContextRef: v1alpha1.ResourceRef{Name: contextName},
			Proxy: v1alpha1.Proxy{
				VirtualHosts: []v1alpha1.VirtualHost{{Path: "/" + name}},
				Groups: []v1alpha1.EndpointGroup{{
					Name:      "default-group",
					Endpoints: []v1alpha1.Endpoint{{Name: "primary", Target: "https://backend.internal:8443"}},
				}},
			},
		},
	}
}

func newApiPlan(name, namespace, apiName string) *v1alpha1.ApiPlan {
	return &v1alpha1.ApiPlan{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Spec: v1alpha1.ApiPlanSpec{
			Name:     name,
			APIRef:   v1alpha1.ResourceRef{Name: apiName},
			Security: v1alpha1.SecurityKeyLess,
		},
	}
}

func findCondition(conditions []metav1.Condition, condType string) *metav1.Condition {
	for i := range conditions {
		if conditions[i].Type == condType {
			return &conditions[i]
		}
	}
	return nil
}

// fakeGateway is an in-memory gateway.Interface. Remote failures are scripted
// per method; call counts let tests assert on write idempotence.
type fakeGateway struct {
	mu     sync.Mutex
	nextID int

	apis  map[string]*gateway.API
	plans map[string]map[string]*gateway.Plan

	findAPIErr   error
	createAPIErr error
	deleteAPIErr error
	lifecycleErr error

	createPlanErr error
	deletePlanErr error

	calls map[string]int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		apis:  map[string]*gateway.API{},
		plans: map[string]map[string]*gateway.Plan{},
		calls: map[string]int{},
	}
}

// ClientFor implements GatewayProvider: every context resolves to this fake.
func (f *fakeGateway) ClientFor(_ context.Context, _ *v1alpha1.ManagementContext) (gateway.Interface, error) {
	return f, nil
}

func (f *fakeGateway) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeGateway) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls["CreateOrUpdateAPI"] + f.calls["CreateOrUpdatePlan"] +
		f.calls["DeleteAPI"] + f.calls["DeletePlan"] + f.calls["SetAPILifecycle"]
}

func (f *fakeGateway) GetAPI(_ context.Context, id string) (*gateway.API, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["GetAPI"]++
	api, ok := f.apis[id]
	if !ok {
		return nil, &gateway.RemoteError{Op: "GET api", StatusCode: 404}
	}
	copied := *api
	return &copied, nil
}

func (f *fakeGateway) FindAPIByName(_ context.Context, name string) (*gateway.API, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["FindAPIByName"]++
	if f.findAPIErr != nil {
		return nil, f.findAPIErr
	}
	for _, api := range f.apis {
		if api.Name == name {
			copied := *api
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeGateway) CreateOrUpdateAPI(_ context.Context, desired *gateway.API) (*gateway.API, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["CreateOrUpdateAPI"]++
	if f.createAPIErr != nil {
		return nil, f.createAPIErr
	}
	if desired.ID == "" {
		f.nextID++
		desired.ID = fmt.Sprintf("api-%d", f.nextID)
	}
	// Runtime state survives content updates, as on the real gateway.
	if existing, ok := f.apis[desired.ID]; ok && desired.State == "" {
		desired.State = existing.State
	}
	copied := *desired
	f.apis[desired.ID] = &copied
	result := copied
	return &result, nil
}

func (f *fakeGateway) DeleteAPI(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["DeleteAPI"]++
	if f.deleteAPIErr != nil {
		return f.deleteAPIErr
	}
	delete(f.apis, id)
	return nil
}

func (f *fakeGateway) SetAPILifecycle(_ context.Context, id string, action gateway.LifecycleAction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["SetAPILifecycle"]++
	if f.lifecycleErr != nil {
		return f.lifecycleErr
	}
	if api, ok := f.apis[id]; ok {
		if action == gateway.ActionStart {
			api.State = "STARTED"
		} else {
			api.State = "STOPPED"
		}
	}
	return nil
}

func (f *fakeGateway) GetPlan(_ context.Context, apiID, planID string) (*gateway.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["GetPlan"]++
	plan, ok := f.plans[apiID][planID]
	if !ok {
		return nil, &gateway.RemoteError{Op: "GET plan", StatusCode: 404}
	}
	copied := *plan
	return &copied, nil
}

func (f *fakeGateway) FindPlanByName(_ context.Context, apiID, name string) (*gateway.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["FindPlanByName"]++
	for _, plan := range f.plans[apiID] {
		if plan.Name == name {
			copied := *plan
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeGateway) CreateOrUpdatePlan(_ context.Context, apiID string, desired *gateway.Plan) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["CreateOrUpdatePlan"]++
	if f.createPlanErr != nil {
		return "", f.createPlanErr
	}
	if desired.ID == "" {
		f.nextID++
		desired.ID = fmt.Sprintf("plan-%d", f.nextID)
	}
	if f.plans[apiID] == nil {
		f.plans[apiID] = map[string]*gateway.Plan{}
	}
	copied := *desired
	f.plans[apiID][desired.ID] = &copied
	return desired.ID, nil
}

func (f *fakeGateway) DeletePlan(_ context.Context, apiID, planID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["DeletePlan"]++
	if f.deletePlanErr != nil {
		return f.deletePlanErr
	}
	delete(f.plans[apiID], planID)
	return nil
}
