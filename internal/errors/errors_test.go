package errors

import (
	"fmt"
	"testing"
)

func TestBuilderDefaults(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("test error")
	ee := New(err).Build()

	if ee.Error() != "test error" {
		t.Errorf("Expected error message 'test error', got '%s'", ee.Error())
	}
	if ee.GetComponent() != ComponentUnknown {
		t.Errorf("Expected component 'unknown', got '%s'", ee.GetComponent())
	}
	if ee.Category != CategoryGeneric {
		t.Errorf("Expected category 'generic', got '%s'", ee.Category)
	}
}

func TestBuilderCategoryAndContext(t *testing.T) {
	t.Parallel()

	ee := Newf("crop %q not found", "tomato").
		Category(CategoryNotFound).
		Component("datastore").
		Context("crop", "tomato").
		Build()

	if ee.Category != CategoryNotFound {
		t.Errorf("Expected category 'not-found', got '%s'", ee.Category)
	}
	if ee.GetComponent() != "datastore" {
		t.Errorf("Expected component 'datastore', got '%s'", ee.GetComponent())
	}
	ctx := ee.GetContext()
	if ctx["crop"] != "tomato" {
		t.Errorf("Expected context crop=tomato, got %v", ctx["crop"])
	}
}

func TestIsMatchesOnCategory(t *testing.T) {
	t.Parallel()

	a := Newf("first").Category(CategoryValidation).Build()
	b := Newf("second").Category(CategoryValidation).Build()
	c := Newf("third").Category(CategoryDatabase).Build()

	if !Is(a, b) {
		t.Error("Expected errors with the same category to match")
	}
	if Is(a, c) {
		t.Error("Expected errors with different categories not to match")
	}
}

func TestUnwrapPreservesOriginal(t *testing.T) {
	t.Parallel()

	orig := fmt.Errorf("db connection refused")
	ee := New(fmt.Errorf("saving detection: %w", orig)).Category(CategoryDatabase).Build()

	if !Is(ee, orig) {
		t.Error("Expected wrapped error chain to reach the original error")
	}
}

func TestCategoryOf(t *testing.T) {
	t.Parallel()

	if got := CategoryOf(Newf("x").Category(CategoryTimeout).Build()); got != CategoryTimeout {
		t.Errorf("Expected timeout category, got %s", got)
	}
	if got := CategoryOf(fmt.Errorf("plain")); got != CategoryGeneric {
		t.Errorf("Expected generic category for plain error, got %s", got)
	}
}
