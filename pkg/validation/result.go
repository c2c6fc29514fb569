package validation

import (
	"github.com/goliatone/go-formcompiler/pkg/formerrors"
	"github.com/goliatone/go-formcompiler/pkg/schema"
)

// Issue is a single validation failure. FieldPath is the field name for data
// violations and the configured form path for definition problems.
type Issue struct {
	FieldPath string `json:"fieldPath" yaml:"fieldPath"`
	Message   string `json:"message" yaml:"message"`
	Code      string `json:"code" yaml:"code"`
}

// Result is the outcome of a validation call. Data holds the coerced record
// on success and is nil otherwise; Issues is empty on success.
type Result struct {
	Success bool           `json:"success" yaml:"success"`
	Data    map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
	Issues  []Issue        `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// Err converts a failed result into an error listing its issues.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	list := formerrors.NewErrorList()
	for _, issue := range r.Issues {
		list.Addf(formerrors.KindValidation, "", issue.FieldPath, "%s (%s)", issue.Message, issue.Code)
	}
	return list.ToError()
}

func success(data map[string]any) Result {
	return Result{Success: true, Data: data}
}

// definitionFailure relabels definition-level errors under formPath, keeping
// the original location in the message and the error kind as code.
func definitionFailure(formPath string, err error) Result {
	list := formerrors.AsList(err)
	issues := make([]Issue, 0, list.Count())
	for _, e := range list.Errors {
		msg := e.Message
		if e.Path != "" {
			msg = e.Path + ": " + msg
		}
		issues = append(issues, Issue{FieldPath: formPath, Message: msg, Code: string(e.Kind)})
	}
	return Result{Issues: issues}
}

func dataFailure(violations []schema.Violation) Result {
	issues := make([]Issue, 0, len(violations))
	for _, v := range violations {
		issues = append(issues, Issue{FieldPath: v.Field, Message: v.Message, Code: string(v.Code)})
	}
	return Result{Issues: issues}
}
