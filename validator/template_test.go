package validator

import (
	"errors"
	"testing"
)

func TestGetEntityTemplate(t *testing.T) {
	v := testValidator()

	tmpl, err := v.GetEntityTemplate("Person")
	if err != nil {
		t.Fatalf("GetEntityTemplate: %v", err)
	}
	if tmpl.EntityType != "Person" {
		t.Errorf("entity_type = %q", tmpl.EntityType)
	}

	age, ok := tmpl.Properties["age"]
	if !ok {
		t.Fatal("template missing applicable property age")
	}
	if age.ValueRange == nil || age.ValueRange.Min != 0 || age.ValueRange.Max != 150 {
		t.Errorf("age range = %+v", age.ValueRange)
	}

	cert, ok := tmpl.Modifiers["certainty"]
	if !ok {
		t.Fatal("template missing applicable modifier certainty")
	}
	if cert.DefaultValue != "medium" || len(cert.Values) != 3 {
		t.Errorf("certainty slot = %+v", cert)
	}

	// Connection-scoped slots must not leak into entity templates.
	if _, ok := tmpl.Properties["since"]; ok {
		t.Error("connection property leaked into entity template")
	}
	if _, ok := tmpl.Modifiers["temporal"]; ok {
		t.Error("connection modifier leaked into entity template")
	}
}

func TestGetRelationshipTemplate(t *testing.T) {
	v := testValidator()

	tmpl, err := v.GetRelationshipTemplate("WORKS_AT")
	if err != nil {
		t.Fatalf("GetRelationshipTemplate: %v", err)
	}
	if len(tmpl.Domain) != 1 || tmpl.Domain[0] != "Person" {
		t.Errorf("domain = %v", tmpl.Domain)
	}
	if len(tmpl.Range) != 1 || tmpl.Range[0] != "Organization" {
		t.Errorf("range = %v", tmpl.Range)
	}
	if _, ok := tmpl.Properties["since"]; !ok {
		t.Error("template missing applicable property since")
	}
	if _, ok := tmpl.Modifiers["temporal"]; !ok {
		t.Error("template missing applicable modifier temporal")
	}
}

func TestGetTemplateUnknownConcept(t *testing.T) {
	v := testValidator()

	if _, err := v.GetEntityTemplate("Ghost"); !errors.Is(err, ErrUnknownConcept) {
		t.Errorf("entity: want ErrUnknownConcept, got %v", err)
	}
	if _, err := v.GetRelationshipTemplate("TELEPORTS_TO"); !errors.Is(err, ErrUnknownConcept) {
		t.Errorf("relationship: want ErrUnknownConcept, got %v", err)
	}
}
