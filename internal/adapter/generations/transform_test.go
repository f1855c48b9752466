// Copyright 2026 CareOps
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package generations

import "testing"

func transformAdapter(t *testing.T) *Adapter {
	t.Helper()
	a, err := New(Config{BaseURL: "https://portal.example.com"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return a
}

func TestTransform_Fields(t *testing.T) {
	a := transformAdapter(t)

	rec := visitRecord()
	rec.Tasks = []string{"meds", "meal prep"}
	rec.Metadata = map[string]string{"shift": "shift-77"}

	form, err := a.Transform(rec)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	want := map[string]string{
		"patient":          "p1",
		"caregiver":        "c1",
		"visit_date":       "12/22/2025",
		"start_time":       "09:00",
		"end_time":         "10:30",
		"note":             "ok",
		"shift":            "shift-77",
		"tags":             "visit-note",
		"show_on_calendar": "on",
		"family_portal":    "on",
		"tasks":            "meds, meal prep",
	}
	for field, value := range want {
		if got := form.Get(field); got != value {
			t.Errorf("form[%s] = %q, want %q", field, got, value)
		}
	}
}

func TestTransform_Deterministic(t *testing.T) {
	a := transformAdapter(t)
	rec := visitRecord()

	first, err := a.Transform(rec)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	second, err := a.Transform(rec)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if first.Encode() != second.Encode() {
		t.Errorf("encodings differ:\n%s\n%s", first.Encode(), second.Encode())
	}
}

func TestTransform_ShiftFallsBackToVisitID(t *testing.T) {
	a := transformAdapter(t)

	form, err := a.Transform(visitRecord())
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if got := form.Get("shift"); got != "123" {
		t.Errorf("shift = %q, want visit identifier fallback", got)
	}
}

func TestTransform_TagsMetadataOverride(t *testing.T) {
	a := transformAdapter(t)

	rec := visitRecord()
	rec.Metadata = map[string]string{"tags": "urgent,followup"}

	base, err := a.Transform(visitRecord())
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	tagged, err := a.Transform(rec)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if got := tagged.Get("tags"); got != "urgent,followup" {
		t.Errorf("tags = %q, want the metadata value", got)
	}

	// Only the tags field may differ between the two forms.
	tagged.Set("tags", base.Get("tags"))
	if base.Encode() != tagged.Encode() {
		t.Errorf("metadata tags changed more than the tags field:\n%s\n%s",
			base.Encode(), tagged.Encode())
	}
}

func TestTransform_NoTasksOmitsField(t *testing.T) {
	a := transformAdapter(t)

	form, err := a.Transform(visitRecord())
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if _, present := form["tasks"]; present {
		t.Error("tasks field present for a record without tasks")
	}
}

func TestTransform_DateLayouts(t *testing.T) {
	a := transformAdapter(t)

	for _, input := range []string{
		"2025-12-22",
		"2025-12-22T09:00:00Z",
		"2025-12-22 09:00:00",
	} {
		rec := visitRecord()
		rec.VisitDate = input
		form, err := a.Transform(rec)
		if err != nil {
			t.Fatalf("Transform(%q) error = %v", input, err)
		}
		if got := form.Get("visit_date"); got != "12/22/2025" {
			t.Errorf("visit_date for input %q = %q, want 12/22/2025", input, got)
		}
	}
}

func TestTransform_BadDate(t *testing.T) {
	a := transformAdapter(t)

	rec := visitRecord()
	rec.VisitDate = "next tuesday"
	if _, err := a.Transform(rec); err == nil {
		t.Error("Transform() accepted an unparseable date")
	}
}
