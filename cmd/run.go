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

package cmd

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"
	"sigs.k8s.io/controller-runtime/pkg/webhook"

	v1alpha1 "github.com/apimops/gravitee-apim-operator/api/v1alpha1"
	"github.com/apimops/gravitee-apim-operator/internal/controller"
	"github.com/apimops/gravitee-apim-operator/internal/credentials"
	"github.com/apimops/gravitee-apim-operator/internal/logger"
	"github.com/apimops/gravitee-apim-operator/internal/track"
)

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(v1alpha1.AddToScheme(scheme))
}

type runOptions struct {
	metricsAddr          string
	probeAddr            string
	enableLeaderElection bool
	secureMetrics        bool
	enableHTTP2          bool
	enableTracing        bool
}

func newRunCommand() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the controller manager",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runManager(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.metricsAddr, "metrics-bind-address", "0", "The address the metrics endpoint binds to. "+
		"Use :8443 for HTTPS or :8080 for HTTP, or leave as 0 to disable the metrics service.")
	flags.StringVar(&opts.probeAddr, "health-probe-bind-address", ":8081", "The address the probe endpoint binds to.")
	flags.BoolVar(&opts.enableLeaderElection, "leader-elect", false,
		"Enable leader election for controller manager. "+
			"Enabling this will ensure there is only one active controller manager.")
	flags.BoolVar(&opts.secureMetrics, "metrics-secure", true,
		"If set, the metrics endpoint is served securely via HTTPS.")
	flags.BoolVar(&opts.enableHTTP2, "enable-http2", false,
		"If set, HTTP/2 will be enabled for the metrics and webhook servers")
	flags.BoolVar(&opts.enableTracing, "enable-tracing", true,
		"If set, spans are exported to the configured OTLP collector.")

	return cmd
}

func runManager(ctx context.Context, opts *runOptions) error {
	ctrl.SetLogger(zap.New(zap.UseDevMode(false)))

	if opts.enableTracing {
		shutdown := logger.InitTracer(ctx)
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				setupLog.Error(err, "⚠️ Failed to shut down tracer provider")
			}
		}()
	}

	// HTTP/2 stays off unless asked for, to avoid exposure to the
	// rapid-reset class of vulnerabilities.
	var tlsOpts []func(*tls.Config)
	if !opts.enableHTTP2 {
		tlsOpts = append(tlsOpts, func(c *tls.Config) {
			setupLog.Info("ℹ️ Disabling http/2")
			c.NextProtos = []string{"http/1.1"}
		})
	}

	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{
		Scheme: scheme,
		Metrics: metricsserver.Options{
			BindAddress:   opts.metricsAddr,
			SecureServing: opts.secureMetrics,
			TLSOpts:       tlsOpts,
		},
		WebhookServer:          webhook.NewServer(webhook.Options{TLSOpts: tlsOpts}),
		HealthProbeBindAddress: opts.probeAddr,
		LeaderElection:         opts.enableLeaderElection,
		LeaderElectionID:       "gravitee-apim-operator.apimops.io",
	})
	if err != nil {
		return fmt.Errorf("unable to start manager: %w", err)
	}

	records := track.NewStore()
	resolver := &credentials.Resolver{Client: mgr.GetClient()}

	if err := (&controller.ManagementContextReconciler{
		Client: mgr.GetClient(),
		Scheme: mgr.GetScheme(),
	}).SetupWithManager(mgr); err != nil {
		return fmt.Errorf("unable to create controller ManagementContext: %w", err)
	}
	if err := (&controller.ApiDefinitionReconciler{
		Client:  mgr.GetClient(),
		Scheme:  mgr.GetScheme(),
		Records: records,
		Gateway: resolver,
	}).SetupWithManager(mgr); err != nil {
		return fmt.Errorf("unable to create controller ApiDefinition: %w", err)
	}
	if err := (&controller.ApiPlanReconciler{
		Client:  mgr.GetClient(),
		Scheme:  mgr.GetScheme(),
		Records: records,
		Gateway: resolver,
	}).SetupWithManager(mgr); err != nil {
		return fmt.Errorf("unable to create controller ApiPlan: %w", err)
	}

	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		return fmt.Errorf("unable to set up health check: %w", err)
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		return fmt.Errorf("unable to set up ready check: %w", err)
	}

	setupLog.Info("🚀 Starting manager")
	if err := mgr.Start(ctrl.SetupSignalHandler()); err != nil {
		return fmt.Errorf("problem running manager: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(newRunCommand())
}
