package catalog

import (
	"testing"
)

func TestLookupFailsClosed(t *testing.T) {
	def := Lookup(TaskType("made_up_task"))
	if def.Task != TaskGeneralInquiry {
		t.Errorf("Lookup(unknown) = %v, want general inquiry", def.Task)
	}
	if len(def.RequiredFields) != 0 {
		t.Errorf("general inquiry should have no required fields, got %v", def.RequiredFields)
	}
}

func TestMissingFieldsOrder(t *testing.T) {
	tests := []struct {
		name      string
		task      TaskType
		collected map[string]string
		entities  map[string]string
		want      []string
	}{
		{
			name: "loan with nothing collected",
			task: TaskLoanApply,
			want: []string{"loan_type", "amount", "tenure"},
		},
		{
			name:      "loan with middle field collected keeps order",
			task:      TaskLoanApply,
			collected: map[string]string{"amount": "50000"},
			want:      []string{"loan_type", "tenure"},
		},
		{
			name:      "entities count toward completeness",
			task:      TaskTransfer,
			collected: map[string]string{"amount": "500"},
			entities:  map[string]string{"to_account": "12345678"},
			want:      nil,
		},
		{
			name: "zero-field task is never missing anything",
			task: TaskBalanceInquiry,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MissingFields(tt.task, tt.collected, tt.entities)
			if len(got) != len(tt.want) {
				t.Fatalf("MissingFields = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("MissingFields[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestValidateField(t *testing.T) {
	tests := []struct {
		name    string
		task    TaskType
		field   string
		value   string
		wantErr bool
	}{
		{"valid loan amount", TaskLoanApply, "amount", "50000", false},
		{"loan amount below minimum", TaskLoanApply, "amount", "500", true},
		{"negative loan amount", TaskLoanApply, "amount", "-100", true},
		{"loan amount above maximum", TaskLoanApply, "amount", "99999999", true},
		{"non-numeric amount", TaskLoanApply, "amount", "lots", true},
		{"valid loan type", TaskLoanApply, "loan_type", "personal", false},
		{"loan type is case-insensitive", TaskLoanApply, "loan_type", "Personal", false},
		{"unknown loan type", TaskLoanApply, "loan_type", "yacht", true},
		{"valid tenure", TaskLoanApply, "tenure", "36", false},
		{"tenure too short", TaskLoanApply, "tenure", "3", true},
		{"valid card number", TaskCardBlock, "card_number", "1234", false},
		{"card number too long", TaskCardBlock, "card_number", "12345", true},
		{"card number with letters", TaskCardBlock, "card_number", "12a4", true},
		{"valid account", TaskTransfer, "to_account", "12345678", false},
		{"account too short", TaskTransfer, "to_account", "123", true},
		{"empty complaint subject", TaskComplaintFile, "subject", "  ", true},
		{"field without a rule accepts anything", TaskTransfer, "description", "rent", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateField(tt.task, tt.field, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateField(%v, %q, %q) error = %v, wantErr %v", tt.task, tt.field, tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestPromptForUnknownFieldHasFallback(t *testing.T) {
	got := PromptFor(TaskTransfer, "swift_code")
	if got == "" {
		t.Error("PromptFor should never return an empty prompt")
	}
}
