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

// Package record defines the vendor-independent visit record and its
// validation rules. Validation happens once, at the orchestration
// boundary, before any network call.
package record

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// VisitRecord is the canonical, vendor-independent representation of a
// care visit note.
type VisitRecord struct {
	VisitID     string            `json:"visitId" validate:"required"`
	PatientID   string            `json:"patientId" validate:"required"`
	CaregiverID string            `json:"caregiverId" validate:"required"`
	VisitDate   string            `json:"visitDate" validate:"required"`
	StartTime   string            `json:"startTime"`
	EndTime     string            `json:"endTime"`
	Note        string            `json:"note" validate:"required"`
	Tasks       []string          `json:"tasks,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// dateLayouts are the accepted visitDate input layouts, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ApplyDefaults fills optional fields, defaulting the visit date to the
// current date when entirely absent.
func (r *VisitRecord) ApplyDefaults(now time.Time) {
	if r.VisitDate == "" {
		r.VisitDate = now.Format("2006-01-02")
	}
}

// Validate checks the submission invariants: identifiers, note text and
// visit date must be non-empty, and the date must parse.
func (r *VisitRecord) Validate() error {
	if err := validate.Struct(r); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			field := errs[0].Field()
			return fmt.Errorf("field %s is required", field)
		}
		return err
	}
	if _, err := r.Date(); err != nil {
		return err
	}
	return nil
}

// Date parses the visit date from its ISO-like input form.
func (r *VisitRecord) Date() (time.Time, error) {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, r.VisitDate); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable visit date %q", r.VisitDate)
}

// MetadataValue returns the named metadata entry, or fallback when the
// entry is absent or empty.
func (r *VisitRecord) MetadataValue(key, fallback string) string {
	if r.Metadata != nil {
		if v, ok := r.Metadata[key]; ok && v != "" {
			return v
		}
	}
	return fallback
}
