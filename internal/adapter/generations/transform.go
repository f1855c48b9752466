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

import (
	"net/url"
	"strings"

	"github.com/careops/notebridge/internal/record"
)

// Vendor form field defaults.
const (
	// defaultTags categorizes notes that carry no tags metadata.
	defaultTags = "visit-note"

	// checkboxOn is the portal's checkbox encoding for "checked".
	checkboxOn = "on"

	// vendorDateLayout is the textual date layout the portal forms expect.
	vendorDateLayout = "01/02/2006"
)

// Transform maps a canonical record to the portal's note form fields.
// Pure: identical records produce identical output. The shift identifier
// and tags come from record metadata when present; shift falls back to
// the visit identifier, tags to a fixed constant.
func (a *Adapter) Transform(rec record.VisitRecord) (url.Values, error) {
	date, err := rec.Date()
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("patient", rec.PatientID)
	form.Set("caregiver", rec.CaregiverID)
	form.Set("visit_date", date.Format(vendorDateLayout))
	form.Set("start_time", rec.StartTime)
	form.Set("end_time", rec.EndTime)
	form.Set("note", rec.Note)
	form.Set("shift", rec.MetadataValue("shift", rec.VisitID))
	form.Set("tags", rec.MetadataValue("tags", defaultTags))
	form.Set("show_on_calendar", checkboxOn)
	form.Set("family_portal", checkboxOn)

	if len(rec.Tasks) > 0 {
		form.Set("tasks", strings.Join(rec.Tasks, ", "))
	}

	return form, nil
}
