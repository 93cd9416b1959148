package core

import (
	"encoding/json"
	"testing"
)

func TestParseAttribute(t *testing.T) {
	tests := []struct {
		input   string
		key     string
		want    Value
		wantErr bool
	}{
		{input: "partner_type=tier1_supplier", key: "partner_type", want: StringValue("tier1_supplier")},
		{input: "certifications=TISAX,ISO27001", key: "certifications", want: ListValue("TISAX", "ISO27001")},
		{input: "certifications=[IATF16949]", key: "certifications", want: ListValue("IATF16949")},
		{input: "tier=2", key: "tier", want: NumberValue(2)},
		{input: "audited=true", key: "audited", want: BoolValue(true)},
		{input: " region = EU ", key: "region", want: StringValue("EU")},
		{input: "region", wantErr: true},
		{input: "=EU", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			key, got, err := ParseAttribute(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAttribute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if key != tt.key {
				t.Errorf("key = %q, want %q", key, tt.key)
			}
			if !got.Equal(tt.want) {
				t.Errorf("value = %v (%s), want %v (%s)", got, got.Kind(), tt.want, tt.want.Kind())
			}
		})
	}
}

func TestAttributeSet_JSON(t *testing.T) {
	input := `{"partner_type":"tier1_supplier","tier":1,"audited":false,"certifications":["TISAX","ISO27001"]}`

	var attrs AttributeSet
	if err := json.Unmarshal([]byte(input), &attrs); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if v, _ := attrs.Get("tier"); v.Kind() != KindNumber {
		t.Errorf("tier kind = %s, want number", v.Kind())
	}
	if v, _ := attrs.Get("audited"); v.Kind() != KindBool {
		t.Errorf("audited kind = %s, want bool", v.Kind())
	}
	if v, _ := attrs.Get("certifications"); !v.Contains("ISO27001") {
		t.Errorf("certifications = %v, want to contain ISO27001", v)
	}

	out, err := json.Marshal(attrs)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != `{"audited":false,"certifications":["TISAX","ISO27001"],"partner_type":"tier1_supplier","tier":1}` {
		t.Errorf("Marshal() = %s", out)
	}
}

func TestValueOf_RejectsNested(t *testing.T) {
	if _, err := ValueOf([]any{"a", []any{"b"}}); err == nil {
		t.Error("ValueOf() accepted a nested list")
	}
	if _, err := ValueOf(map[string]any{"a": 1}); err == nil {
		t.Error("ValueOf() accepted a map")
	}
}

func TestAttributeSet_CloneIsIndependent(t *testing.T) {
	attrs := AttributeSet{"certifications": ListValue("TISAX")}
	cp := attrs.Clone()
	cp["region"] = StringValue("EU")

	if _, ok := attrs.Get("region"); ok {
		t.Error("Clone() shares the underlying map")
	}
}
