package template

import "testing"

func TestValue_Str(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"null", Null(), ""},
		{"bool true", Bool(true), "true"},
		{"bool false", Bool(false), "false"},
		{"int", Int(7), "7"},
		{"float", Float(1.25), "1.25"},
		{"string", String("hi"), "hi"},
		{"list renders empty", List([]Value{Int(1)}), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Str(); got != tt.want {
				t.Errorf("Str() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValue_IsNull(t *testing.T) {
	if !Null().IsNull() {
		t.Error("Null().IsNull() should be true")
	}
	if Int(0).IsNull() {
		t.Error("Int(0).IsNull() should be false")
	}
	if (Value{}).IsNull() != true {
		t.Error("zero Value should be null")
	}
}

func TestMap_SetGet(t *testing.T) {
	m := NewMap()
	m.Set("Name", String("Alice"))

	if v, ok := m.Get("name"); !ok || v.Str() != "Alice" {
		t.Errorf("Get(\"name\") = %v, %v, want Alice, true", v, ok)
	}
	if v, ok := m.Get("missing"); ok || !v.IsNull() {
		t.Errorf("Get(\"missing\") = %v, %v, want null, false", v, ok)
	}
}

func TestMap_Keys_PreservesInsertionOrderAndCase(t *testing.T) {
	m := NewMap()
	m.Set("Zebra", Int(1))
	m.Set("Apple", Int(2))
	m.Set("zebra", Int(3)) // re-set, shouldn't move position or change case

	keys := m.Keys()
	if len(keys) != 2 || keys[0] != "Zebra" || keys[1] != "Apple" {
		t.Errorf("Keys() = %v, want [Zebra Apple]", keys)
	}
	v, _ := m.Get("ZEBRA")
	if v.Str() != "3" {
		t.Errorf("Get(\"ZEBRA\") = %q, want %q", v.Str(), "3")
	}
}

func TestMap_NilReceiver(t *testing.T) {
	var m *Map
	if v, ok := m.Get("x"); ok || !v.IsNull() {
		t.Error("Get on nil map should return null, false")
	}
	if got := m.Keys(); got != nil {
		t.Error("Keys on nil map should return nil")
	}
}
