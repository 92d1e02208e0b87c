// Package gateway provides a client for the Gravitee APIM management REST API.
// It covers the operations the reconcilers need: create-or-update, get and
// delete for APIs and plans, plus lifecycle actions. All write operations are
// idempotent by construction: the client compares the canonical remote state
// against the desired state before issuing a call and treats "already exists
// with same content" as success.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	retry "github.com/avast/retry-go/v4"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/apimops/gravitee-apim-operator/internal/metrics"
)

// logger is the logger instance for management API operations.
var logger = ctrl.Log.WithName("gateway")

// callTimeout bounds every management API call. Calls exceeding it are
// classified retryable.
const callTimeout = 30 * time.Second

// readAttempts bounds the in-call retry of idempotent GETs. Write retries are
// the reconciler's job, not the client's.
const readAttempts = 3

// Authorizer attaches credentials to an outgoing management API request.
type Authorizer func(req *http.Request) error

// Interface is the surface the reconcilers program against. The HTTP client
// below is the production implementation; tests substitute an in-memory one.
type Interface interface {
	GetAPI(ctx context.Context, id string) (*API, error)
	FindAPIByName(ctx context.Context, name string) (*API, error)
	CreateOrUpdateAPI(ctx context.Context, desired *API) (*API, error)
	DeleteAPI(ctx context.Context, id string) error
	SetAPILifecycle(ctx context.Context, id string, action LifecycleAction) error

	GetPlan(ctx context.Context, apiID, planID string) (*Plan, error)
	FindPlanByName(ctx context.Context, apiID, name string) (*Plan, error)
	CreateOrUpdatePlan(ctx context.Context, apiID string, desired *Plan) (string, error)
	DeletePlan(ctx context.Context, apiID, planID string) error
}

// Client talks to one environment of one management API instance.
type Client struct {
	baseURL   string
	orgID     string
	envID     string
	authorize Authorizer
	http      *http.Client
}

// NewClient builds a client for the given management endpoint. The authorizer
// is called per request so short-lived tokens stay fresh.
func NewClient(baseURL, orgID, envID string, authorize Authorizer) *Client {
	return &Client{
		baseURL:   baseURL,
		orgID:     orgID,
		envID:     envID,
		authorize: authorize,
		http:      &http.Client{Timeout: callTimeout},
	}
}

func (c *Client) apisURL() string {
	return fmt.Sprintf("%s/management/organizations/%s/environments/%s/apis", c.baseURL, c.orgID, c.envID)
}

// do issues one request and decodes the JSON response into out (when out is
// non-nil). Non-2xx responses become *RemoteError.
func (c *Client) do(ctx context.Context, method, url string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s payload: %w", method, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.authorize(req); err != nil {
		return fmt.Errorf("authorize request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.GatewayRequestsTotal.WithLabelValues(method, "transport_error").Inc()
		return fmt.Errorf("failed to call management API: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Error(closeErr, "⚠️ Failed to close response body")
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.GatewayRequestsTotal.WithLabelValues(method, "transport_error").Inc()
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 300 {
		metrics.GatewayRequestsTotal.WithLabelValues(method, fmt.Sprintf("%d", resp.StatusCode)).Inc()
		return &RemoteError{Op: fmt.Sprintf("%s %s", method, url), StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	metrics.GatewayRequestsTotal.WithLabelValues(method, "ok").Inc()

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// get wraps do with a short in-call retry. GETs are safe to repeat, so a
// transient blip does not have to cost a whole reconcile round trip.
func (c *Client) get(ctx context.Context, url string, out any) error {
	return retry.Do(
		func() error { return c.do(ctx, http.MethodGet, url, nil, out) },
		retry.Context(ctx),
		retry.Attempts(readAttempts),
		retry.Delay(500*time.Millisecond),
		retry.RetryIf(func(err error) bool { return IsRetryable(err) && !IsNotFound(err) }),
		retry.LastErrorOnly(true),
	)
}

// GetAPI fetches an API by its external id.
func (c *Client) GetAPI(ctx context.Context, id string) (*API, error) {
	var api API
	if err := c.get(ctx, fmt.Sprintf("%s/%s", c.apisURL(), id), &api); err != nil {
		return nil, err
	}
	return &api, nil
}

// FindAPIByName looks an API up by name. It is the first-apply path, used
// when no external id has been recorded yet. A nil API with nil error means
// the API does not exist remotely.
func (c *Client) FindAPIByName(ctx context.Context, name string) (*API, error) {
	var list []API
	if err := c.get(ctx, c.apisURL(), &list); err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].Name == name {
			return &list[i], nil
		}
	}
	return nil, nil
}

// CreateOrUpdateAPI converges the remote API to the desired representation
// and returns the remote representation, runtime state included, so callers
// can decide whether a lifecycle action is still needed. When desired.ID is
// empty a new API is created; otherwise the existing one is updated. If the
// remote content already matches, no write is issued.
func (c *Client) CreateOrUpdateAPI(ctx context.Context, desired *API) (*API, error) {
	if desired.ID != "" {
		current, err := c.GetAPI(ctx, desired.ID)
		switch {
		case IsNotFound(err):
			// Recorded id no longer exists remotely; fall through to create.
			logger.Info("🔍 Recorded API id not found remotely, re-creating", "apiID", desired.ID, "name", desired.Name)
			desired.ID = ""
		case err != nil:
			return nil, err
		case APIsEqual(current, desired):
			logger.Info("✅ API already up to date, skipping write", "apiID", desired.ID, "name", desired.Name)
			return current, nil
		}
	}

	if desired.ID == "" {
		var created API
		if err := c.do(ctx, http.MethodPost, c.apisURL(), desired, &created); err != nil {
			return nil, err
		}
		logger.Info("🆕 API created on gateway", "apiID", created.ID, "name", desired.Name, "version", desired.Version)
		return &created, nil
	}

	var updated API
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("%s/%s", c.apisURL(), desired.ID), desired, &updated); err != nil {
		return nil, err
	}
	if updated.ID == "" {
		updated.ID = desired.ID
	}
	logger.Info("✅ API updated on gateway", "apiID", updated.ID, "name", desired.Name, "version", desired.Version)
	return &updated, nil
}

// DeleteAPI removes an API. A 404 is treated as success: the API is already
// gone, which is the state we want.
func (c *Client) DeleteAPI(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("%s/%s", c.apisURL(), id), nil, nil)
	if IsNotFound(err) {
		logger.Info("ℹ️ API already gone on gateway", "apiID", id)
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("🧹 API deleted on gateway", "apiID", id)
	return nil
}

// SetAPILifecycle starts or stops an API on the gateway.
func (c *Client) SetAPILifecycle(ctx context.Context, id string, action LifecycleAction) error {
	url := fmt.Sprintf("%s/%s?action=%s", c.apisURL(), id, action)
	if err := c.do(ctx, http.MethodPost, url, nil, nil); err != nil {
		return err
	}
	logger.Info("✅ API lifecycle action applied", "apiID", id, "action", action)
	return nil
}

func (c *Client) plansURL(apiID string) string {
	return fmt.Sprintf("%s/%s/plans", c.apisURL(), apiID)
}

// GetPlan fetches a plan by its external id.
func (c *Client) GetPlan(ctx context.Context, apiID, planID string) (*Plan, error) {
	var plan Plan
	if err := c.get(ctx, fmt.Sprintf("%s/%s", c.plansURL(apiID), planID), &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// FindPlanByName looks a plan up by name under an API. A nil plan with nil
// error means the plan does not exist remotely.
func (c *Client) FindPlanByName(ctx context.Context, apiID, name string) (*Plan, error) {
	var list []Plan
	if err := c.get(ctx, c.plansURL(apiID), &list); err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].Name == name {
			return &list[i], nil
		}
	}
	return nil, nil
}

// CreateOrUpdatePlan converges a plan under its API and returns its external
// id, skipping the write when the remote content already matches.
func (c *Client) CreateOrUpdatePlan(ctx context.Context, apiID string, desired *Plan) (string, error) {
	if desired.ID != "" {
		current, err := c.GetPlan(ctx, apiID, desired.ID)
		switch {
		case IsNotFound(err):
			logger.Info("🔍 Recorded plan id not found remotely, re-creating", "planID", desired.ID, "name", desired.Name)
			desired.ID = ""
		case err != nil:
			return "", err
		case PlansEqual(current, desired):
			logger.Info("✅ Plan already up to date, skipping write", "planID", desired.ID, "name", desired.Name)
			return desired.ID, nil
		}
	}

	if desired.ID == "" {
		var created Plan
		if err := c.do(ctx, http.MethodPost, c.plansURL(apiID), desired, &created); err != nil {
			return "", err
		}
		logger.Info("🆕 Plan created on gateway", "planID", created.ID, "name", desired.Name, "apiID", apiID)
		return created.ID, nil
	}

	var updated Plan
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("%s/%s", c.plansURL(apiID), desired.ID), desired, &updated); err != nil {
		return "", err
	}
	logger.Info("✅ Plan updated on gateway", "planID", desired.ID, "name", desired.Name, "apiID", apiID)
	return desired.ID, nil
}

// DeletePlan removes a plan. A 404 is treated as success.
func (c *Client) DeletePlan(ctx context.Context, apiID, planID string) error {
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("%s/%s", c.plansURL(apiID), planID), nil, nil)
	if IsNotFound(err) {
		logger.Info("ℹ️ Plan already gone on gateway", "planID", planID)
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("🧹 Plan deleted on gateway", "planID", planID, "apiID", apiID)
	return nil
}
