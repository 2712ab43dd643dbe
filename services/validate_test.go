package services

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateTakeoff(t *testing.T) {
	valid := LineItem{ID: "1", Unit: "m3", Category: CategorySubStruct, Confidence: ConfidenceHigh}

	tests := []struct {
		name    string
		items   []LineItem
		wantErr string
	}{
		{"valid", []LineItem{valid}, ""},
		{"empty confidence allowed", []LineItem{{ID: "1", Unit: "m3", Category: CategorySubStruct}}, ""},
		{"openings alias", []LineItem{{ID: "1", Unit: "nr", Category: "Openings"}}, ""},
		{"no items", nil, ""},
		{"unknown category", []LineItem{{ID: "1", Unit: "m3", Category: "Landscaping"}}, "boqcategory"},
		{"missing unit", []LineItem{{ID: "1", Category: CategoryRoofing}}, "required"},
		{"bad confidence", []LineItem{{ID: "1", Unit: "m", Category: CategoryRoofing, Confidence: "Sure"}}, "confidence"},
		{"missing id", []LineItem{{Unit: "m", Category: CategoryRoofing}}, "Items[0].ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTakeoff(TakeoffResult{ProjectName: "P", Items: tt.items})
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateTakeoff() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidTakeoff) {
				t.Fatalf("ValidateTakeoff() error = %v, want ErrInvalidTakeoff", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}
