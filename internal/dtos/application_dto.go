package dtos

import "github.com/justsurfingit/applicant-tracker/internal/forms"

// SubmissionRequest is the JSON body of a form submission. Values are keyed
// by field id; each value is a string, a string array, a skill array or a
// file descriptor.
type SubmissionRequest struct {
	Values forms.Values `json:"values" binding:"required"`
}
