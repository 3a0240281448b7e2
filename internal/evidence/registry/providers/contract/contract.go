// Package contract holds reusable test suites that every dataset provider
// must pass: output shape, metadata consistency and error taxonomy.
package contract

import (
	"context"
	"testing"

	"arbt/internal/evidence/registry/evidence"
	"arbt/internal/evidence/registry/providers"
)

// ContractTest defines a successful harvest and the value names expected, in order.
type ContractTest struct {
	Name          string
	Provider      providers.Provider
	OrgNumber     string
	ExpectedNames []string
	ValidateFunc  func(values []evidence.Value) error
}

// ContractSuite is a collection of contract tests for a provider
type ContractSuite struct {
	ProviderID string
	Tests      []ContractTest
}

// Run executes all contract tests in the suite
func (s *ContractSuite) Run(t *testing.T) {
	for _, test := range s.Tests {
		t.Run(test.Name, func(t *testing.T) {
			ctx := context.Background()

			if test.Provider.ID() != s.ProviderID {
				t.Fatalf("expected provider ID %s, got %s", s.ProviderID, test.Provider.ID())
			}

			values, err := test.Provider.Harvest(ctx, test.OrgNumber)
			if err != nil {
				t.Fatalf("harvest failed: %v", err)
			}

			if len(values) != len(test.ExpectedNames) {
				t.Fatalf("expected %d values %v, got %d", len(test.ExpectedNames), test.ExpectedNames, len(values))
			}

			code := test.Provider.Code()
			seen := make(map[string]bool, len(values))
			for i, v := range values {
				if v.Name != test.ExpectedNames[i] {
					t.Errorf("value %d: expected %s, got %s", i, test.ExpectedNames[i], v.Name)
				}
				if seen[v.Name] {
					t.Errorf("value %s emitted twice", v.Name)
				}
				seen[v.Name] = true

				spec, ok := code.Spec(v.Name)
				if !ok {
					t.Errorf("value %s is not declared in %s metadata", v.Name, code.Name)
					continue
				}
				if spec.Type != v.Type {
					t.Errorf("value %s: declared %s, emitted %s", v.Name, spec.Type, v.Type)
				}
				if v.Source != code.Source {
					t.Errorf("value %s: expected source %s, got %s", v.Name, code.Source, v.Source)
				}
			}

			if test.ValidateFunc != nil {
				if err := test.ValidateFunc(values); err != nil {
					t.Errorf("custom validation failed: %v", err)
				}
			}
		})
	}
}

// MetadataTest validates that a provider's declared metadata is usable.
type MetadataTest struct {
	Provider providers.Provider
}

// Run executes a metadata test
func (mt *MetadataTest) Run(t *testing.T) {
	code := mt.Provider.Code()

	if code.Name != mt.Provider.ID() {
		t.Errorf("code name %s does not match provider ID %s", code.Name, mt.Provider.ID())
	}
	if code.Source == "" {
		t.Error("source not set")
	}
	if len(code.Values) == 0 {
		t.Error("no values declared")
	}

	names := make(map[string]bool, len(code.Values))
	for _, v := range code.Values {
		if names[v.Name] {
			t.Errorf("value %s declared twice", v.Name)
		}
		names[v.Name] = true
		if v.Type == "" {
			t.Errorf("value %s has no type", v.Name)
		}
	}
}

// ErrorContractTest validates that provider errors follow the taxonomy
type ErrorContractTest struct {
	Name          string
	Provider      providers.Provider
	OrgNumber     string
	ExpectedKind  providers.ErrorKind
	ExpectedRetry bool
}

// Run executes an error contract test
func (ect *ErrorContractTest) Run(t *testing.T) {
	t.Run(ect.Name, func(t *testing.T) {
		values, err := ect.Provider.Harvest(context.Background(), ect.OrgNumber)
		if err == nil {
			t.Fatalf("expected error but got %d values", len(values))
		}
		if values != nil {
			t.Errorf("expected no values alongside an error, got %d", len(values))
		}

		if kind := providers.KindOf(err); kind != ect.ExpectedKind {
			t.Errorf("expected error kind %s, got %s (%v)", ect.ExpectedKind, kind, err)
		}
		if retry := providers.IsRetryable(err); retry != ect.ExpectedRetry {
			t.Errorf("expected retryable=%v, got %v", ect.ExpectedRetry, retry)
		}
	})
}
