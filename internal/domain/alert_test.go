package domain

import "testing"

func TestAlertFrequency_IsValid(t *testing.T) {
	valid := []AlertFrequency{AlertFrequencyInstant, AlertFrequencyDaily, AlertFrequencyWeekly}
	for _, f := range valid {
		if !f.IsValid() {
			t.Errorf("expected %q to be valid", f)
		}
	}

	if AlertFrequency("monthly").IsValid() {
		t.Error("expected 'monthly' to be invalid")
	}
	if AlertFrequency("").IsValid() {
		t.Error("expected empty frequency to be invalid")
	}
}

func TestAlertUpdate_IsEmpty(t *testing.T) {
	if !(AlertUpdate{}).IsEmpty() {
		t.Error("expected zero-value update to be empty")
	}

	area := "Oncology"
	if (AlertUpdate{DiseaseArea: &area}).IsEmpty() {
		t.Error("expected update with disease area to be non-empty")
	}

	freq := AlertFrequencyDaily
	if (AlertUpdate{Frequency: &freq}).IsEmpty() {
		t.Error("expected update with frequency to be non-empty")
	}

	active := false
	if (AlertUpdate{IsActive: &active}).IsEmpty() {
		t.Error("expected update with active flag to be non-empty")
	}

	if (AlertUpdate{FilterCriteria: FilterCriteria{}}).IsEmpty() {
		t.Error("expected update with empty-but-present criteria to be non-empty")
	}
}
