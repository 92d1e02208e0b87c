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
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	v1alpha1 "github.com/apimops/gravitee-apim-operator/api/v1alpha1"
	"github.com/apimops/gravitee-apim-operator/internal/model"
)

// manifestSet is everything loaded from one directory tree, indexed for
// cross-manifest reference checks.
type manifestSet struct {
	contexts    model.ContextIndex
	definitions map[string]*v1alpha1.ApiDefinition
	plans       []*v1alpha1.ApiPlan
}

func newValidateCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate <dir>",
		Short: "Validate manifests offline, before they reach the cluster",
		Long: `validate loads every YAML manifest under the given directory, applies the
same validation the controllers apply at reconcile time, and cross-checks
references between manifests (contextRef, apiRef). Intended for CI: the exit
code is non-zero when any manifest would be rejected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runValidate(args[0], strict)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat lint warnings as errors")
	return cmd
}

func runValidate(dir string, strict bool) error {
	set, err := loadManifests(dir)
	if err != nil {
		return err
	}

	var errs, warns int
	report := func(kind string, err error) {
		fmt.Fprintf(os.Stderr, "❌ %s: %v\n", kind, err)
		errs++
	}

	for _, mc := range set.contexts {
		if err := model.ValidateManagementContext(mc); err != nil {
			report("ManagementContext", err)
		}
	}

	for _, def := range set.definitions {
		if err := model.ValidateApiDefinition(def); err != nil {
			report("ApiDefinition", err)
		}
		if _, err := model.ResolveContext(def, set.contexts); err != nil {
			report("ApiDefinition", fmt.Errorf("%s: %w", def.Name, err))
		}
		for _, w := range model.Lint(def) {
			fmt.Fprintf(os.Stderr, "⚠️  %s: %s\n", w.Resource, w.Message)
			warns++
		}
	}

	for _, plan := range set.plans {
		if err := model.ValidateApiPlan(plan); err != nil {
			report("ApiPlan", err)
		}
		ref := plan.APIKey()
		if _, ok := set.definitions[model.IndexKey(ref.Namespace, ref.Name)]; !ok {
			report("ApiPlan", fmt.Errorf("%s: apiRef %s/%s does not resolve to a loaded ApiDefinition",
				plan.Name, ref.Namespace, ref.Name))
		}
	}

	total := len(set.contexts) + len(set.definitions) + len(set.plans)
	if errs > 0 || (strict && warns > 0) {
		return fmt.Errorf("%d manifest(s) checked: %d error(s), %d warning(s)", total, errs, warns)
	}
	fmt.Printf("✅ %d manifest(s) checked: %d warning(s)\n", total, warns)
	return nil
}

// loadManifests walks dir and decodes every YAML document into its typed
// object. Documents of unrelated kinds are skipped so the command can run on
// a kustomize tree that mixes in Deployments and ConfigMaps.
func loadManifests(dir string) (*manifestSet, error) {
	set := &manifestSet{
		contexts:    model.ContextIndex{},
		definitions: map[string]*v1alpha1.ApiDefinition{},
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		for _, doc := range strings.Split(string(data), "\n---") {
			if strings.TrimSpace(doc) == "" {
				continue
			}

			var probe metav1.TypeMeta
			if err := yaml.Unmarshal([]byte(doc), &probe); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if probe.APIVersion != v1alpha1.GroupVersion.String() {
				continue
			}

			switch probe.Kind {
			case "ManagementContext":
				var mc v1alpha1.ManagementContext
				if err := yaml.UnmarshalStrict([]byte(doc), &mc); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				set.contexts[model.IndexKey(mc.Namespace, mc.Name)] = &mc
			case "ApiDefinition":
				var def v1alpha1.ApiDefinition
				if err := yaml.UnmarshalStrict([]byte(doc), &def); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				set.definitions[model.IndexKey(def.Namespace, def.Name)] = &def
			case "ApiPlan":
				var plan v1alpha1.ApiPlan
				if err := yaml.UnmarshalStrict([]byte(doc), &plan); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				set.plans = append(set.plans, &plan)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

func init() {
	rootCmd.AddCommand(newValidateCommand())
}
