package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Typed configuration schemas for the supported policies. Policy blobs are a
// tagged union keyed by policy name: unknown names and unknown fields are
// rejected at validation time instead of being passed through untyped.

// RateLimitConfig bounds request rate per time window.
type RateLimitConfig struct {
	// Limit is the number of requests allowed per period.
	Limit int `json:"limit"`
	// PeriodSeconds is the window length.
	PeriodSeconds int `json:"periodSeconds"`
}

func (c RateLimitConfig) validate() error {
	if c.Limit <= 0 {
		return fmt.Errorf("rate-limit: limit must be positive, got %d", c.Limit)
	}
	if c.PeriodSeconds <= 0 {
		return fmt.Errorf("rate-limit: periodSeconds must be positive, got %d", c.PeriodSeconds)
	}
	return nil
}

// QuotaConfig bounds request volume per long window.
type QuotaConfig struct {
	Limit       int `json:"limit"`
	PeriodHours int `json:"periodHours"`
}

func (c QuotaConfig) validate() error {
	if c.Limit <= 0 {
		return fmt.Errorf("quota: limit must be positive, got %d", c.Limit)
	}
	if c.PeriodHours <= 0 {
		return fmt.Errorf("quota: periodHours must be positive, got %d", c.PeriodHours)
	}
	return nil
}

// TransformHeadersConfig adds and removes headers on request or response.
type TransformHeadersConfig struct {
	AddHeaders    map[string]string `json:"addHeaders,omitempty"`
	RemoveHeaders []string          `json:"removeHeaders,omitempty"`
}

func (c TransformHeadersConfig) validate() error {
	if len(c.AddHeaders) == 0 && len(c.RemoveHeaders) == 0 {
		return fmt.Errorf("transform-headers: at least one of addHeaders or removeHeaders is required")
	}
	return nil
}

// CacheConfig enables response caching.
type CacheConfig struct {
	TTLSeconds int `json:"ttlSeconds"`
}

func (c CacheConfig) validate() error {
	if c.TTLSeconds <= 0 {
		return fmt.Errorf("cache: ttlSeconds must be positive, got %d", c.TTLSeconds)
	}
	return nil
}

// MockConfig short-circuits the backend with a fixed response.
type MockConfig struct {
	StatusCode int               `json:"statusCode"`
	Body       string            `json:"body,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
}

func (c MockConfig) validate() error {
	if c.StatusCode < 100 || c.StatusCode > 599 {
		return fmt.Errorf("mock: statusCode must be a valid HTTP status, got %d", c.StatusCode)
	}
	return nil
}

// IPFilteringConfig allows or denies client address ranges.
type IPFilteringConfig struct {
	Allow []string `json:"allow,omitempty"`
	Deny  []string `json:"deny,omitempty"`
}

func (c IPFilteringConfig) validate() error {
	if len(c.Allow) == 0 && len(c.Deny) == 0 {
		return fmt.Errorf("ip-filtering: at least one of allow or deny is required")
	}
	return nil
}

// policyDecoders maps each known policy name to a strict decoder that
// validates the configuration blob against its typed schema.
var policyDecoders = map[string]func(raw []byte) error{
	"rate-limit":        decodeInto[RateLimitConfig],
	"quota":             decodeInto[QuotaConfig],
	"transform-headers": decodeInto[TransformHeadersConfig],
	"cache":             decodeInto[CacheConfig],
	"mock":              decodeInto[MockConfig],
	"ip-filtering":      decodeInto[IPFilteringConfig],
}

type validatable interface{ validate() error }

func decodeInto[T validatable](raw []byte) error {
	var cfg T
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return err
	}
	return cfg.validate()
}

// KnownPolicies returns the sorted list of supported policy names, used in
// error messages and by the offline validator.
func KnownPolicies() []string {
	names := make([]string, 0, len(policyDecoders))
	for name := range policyDecoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidatePolicyStep checks a policy name and its raw configuration against
// the registered schema.
func ValidatePolicyStep(policy string, raw []byte) error {
	decode, ok := policyDecoders[policy]
	if !ok {
		return fmt.Errorf("unknown policy %q (known: %s)", policy, strings.Join(KnownPolicies(), ", "))
	}
	if len(raw) == 0 {
		// Only policies whose schema has no required fields accept an empty
		// configuration; run the decoder on an empty object to find out.
		raw = []byte("{}")
	}
	if err := decode(raw); err != nil {
		return fmt.Errorf("policy %q: %w", policy, err)
	}
	return nil
}
