package concept

import "testing"

func TestConnectionAllowsSourceTarget(t *testing.T) {
	conn := &ConnectionConcept{
		Base:   Base{Name: "WORKS_AT"},
		Domain: []string{"Person"},
		Range:  []string{"Organization"},
	}

	if !conn.AllowsSource("Person") {
		t.Error("expected Person to satisfy domain")
	}
	if conn.AllowsSource("Organization") {
		t.Error("Organization should not satisfy domain")
	}
	if !conn.AllowsTarget("Organization") {
		t.Error("expected Organization to satisfy range")
	}
	if conn.AllowsTarget("Person") {
		t.Error("Person should not satisfy range")
	}
}

func TestConnectionWildcard(t *testing.T) {
	conn := &ConnectionConcept{
		Base:   Base{Name: "RELATED_TO"},
		Domain: []string{Wildcard},
		Range:  []string{Wildcard},
	}

	for _, typ := range []string{"Person", "Organization", "Anything"} {
		if !conn.AllowsSource(typ) || !conn.AllowsTarget(typ) {
			t.Errorf("wildcard should admit %q on both ends", typ)
		}
	}
}

func TestPropertyAppliesToType(t *testing.T) {
	prop := &PropertyConcept{
		Base:      Base{Name: "age"},
		ValueType: ValueNumeric,
		AppliesTo: []string{"Person"},
	}

	if !prop.AppliesToType("Person", CategoryEntity) {
		t.Error("direct type match should apply")
	}
	if prop.AppliesToType("Organization", CategoryEntity) {
		t.Error("age should not apply to Organization")
	}
}

func TestPropertyCategoryFallback(t *testing.T) {
	prop := &PropertyConcept{
		Base:      Base{Name: "salience"},
		ValueType: ValueNumeric,
		AppliesTo: []string{CategoryEntity},
	}

	// Category match is a fallback covering every entity type.
	if !prop.AppliesToType("Person", CategoryEntity) {
		t.Error("category token should apply to any entity type")
	}
	if prop.AppliesToType("WORKS_AT", CategoryConnection) {
		t.Error("Entity category token should not cover connections")
	}
}

func TestModifierAllowsValue(t *testing.T) {
	mod := &ModifierConcept{
		Base:   Base{Name: "certainty"},
		Values: []string{"low", "medium", "high"},
	}

	if !mod.AllowsValue("medium") {
		t.Error("medium should be allowed")
	}
	if mod.AllowsValue("extreme") {
		t.Error("extreme should not be allowed")
	}
}

func TestValidateRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		def     Definition
		wantErr bool
	}{
		{"entity ok", &EntityConcept{Base: Base{Name: "Person"}}, false},
		{"entity missing name", &EntityConcept{}, true},
		{"connection ok", &ConnectionConcept{
			Base: Base{Name: "WORKS_AT"}, Domain: []string{"*"}, Range: []string{"*"},
		}, false},
		{"connection missing domain", &ConnectionConcept{
			Base: Base{Name: "WORKS_AT"}, Range: []string{"*"},
		}, true},
		{"property ok", &PropertyConcept{
			Base: Base{Name: "age"}, ValueType: ValueNumeric,
		}, false},
		{"property unknown value type", &PropertyConcept{
			Base: Base{Name: "age"}, ValueType: ValueType("complex"),
		}, true},
		{"property inverted range", &PropertyConcept{
			Base: Base{Name: "age"}, ValueType: ValueNumeric,
			ValueRange: &Range{Min: 10, Max: 0},
		}, true},
		{"property range on categorical", &PropertyConcept{
			Base: Base{Name: "status"}, ValueType: ValueCategorical,
			ValueRange: &Range{Min: 0, Max: 1},
		}, true},
		{"modifier ok", &ModifierConcept{
			Base: Base{Name: "certainty"}, Values: []string{"low", "high"},
		}, false},
		{"modifier empty values", &ModifierConcept{
			Base: Base{Name: "certainty"},
		}, true},
		{"modifier default outside values", &ModifierConcept{
			Base: Base{Name: "certainty"}, Values: []string{"low", "high"},
			DefaultValue: "medium",
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMatchesAliasCaseInsensitive(t *testing.T) {
	b := &Base{Name: "Person", IndigenousTerms: []string{"Actor", "individual"}}

	if !b.MatchesAlias("actor") {
		t.Error("alias match should be case-insensitive")
	}
	if !b.MatchesAlias("INDIVIDUAL") {
		t.Error("alias match should be case-insensitive")
	}
	if b.MatchesAlias("Person") {
		t.Error("concept name is not an alias")
	}
}

func TestSetModifierAllocates(t *testing.T) {
	e := &Entity{EntityType: "Person"}
	e.SetModifier("certainty", "high")
	if e.Modifiers["certainty"] != "high" {
		t.Error("SetModifier should allocate and set")
	}

	r := &Relationship{RelationshipType: "WORKS_AT"}
	r.SetModifier("certainty", "low")
	if r.Modifiers["certainty"] != "low" {
		t.Error("SetModifier should allocate and set")
	}
}
