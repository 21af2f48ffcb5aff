package composition

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

type ConflictCode string

const (
	// CodeKindMismatch is reported when subgraphs declare the same name with different kinds.
	CodeKindMismatch ConflictCode = "F0001"
	// CodeFieldTypeMismatch is reported when a shared output field has different base types.
	CodeFieldTypeMismatch ConflictCode = "F0002"
	// CodeEnumValueMismatch is reported when enum value sets differ.
	CodeEnumValueMismatch ConflictCode = "F0003"
	// CodeArgumentTypeMismatch is reported when a shared argument has different base types.
	CodeArgumentTypeMismatch ConflictCode = "F0004"
	// CodeInputFieldTypeMismatch is reported when a shared input field has different base types.
	CodeInputFieldTypeMismatch ConflictCode = "F0005"
	// CodeInputFieldSetMismatch is reported when input objects declare different field sets.
	CodeInputFieldSetMismatch ConflictCode = "F0006"
	// CodeRootOperationTypeConflict is reported when subgraphs name different root operation types.
	CodeRootOperationTypeConflict ConflictCode = "F0007"
)

var _ error = (*MergeConflict)(nil)

// MergeConflict is a recoverable diagnostic. The offending type is excluded from the composite schema.
type MergeConflict struct {
	Code      ConflictCode `json:"code" yaml:"code"`
	Message   string       `json:"message" yaml:"message"`
	TypeName  string       `json:"typeName" yaml:"typeName"`
	Subgraphs []string     `json:"subgraphs" yaml:"subgraphs"`
}

func newMergeConflict(code ConflictCode, typeName string, subgraphs []string, format string, args ...interface{}) *MergeConflict {
	subgraphs = append([]string{}, subgraphs...)
	sort.Strings(subgraphs)
	return &MergeConflict{
		Code:      code,
		Message:   fmt.Sprintf(format, args...),
		TypeName:  typeName,
		Subgraphs: subgraphs,
	}
}

func (c *MergeConflict) Error() string {
	return fmt.Sprintf("[%s] %s (subgraphs: %s)", c.Code, c.Message, strings.Join(c.Subgraphs, ", "))
}

// GQLError converts the conflict to a GraphQL error with the code and location data in extensions.
func (c *MergeConflict) GQLError() *gqlerror.Error {
	gErr := gqlerror.Errorf("%s", c.Message)
	gErr.Extensions = map[string]interface{}{
		"code":      string(c.Code),
		"typeName":  c.TypeName,
		"subgraphs": c.Subgraphs,
	}
	return gErr
}

type BuildErrorKind string

const (
	BuildErrorUnresolvableType       BuildErrorKind = "UNRESOLVABLE_TYPE"
	BuildErrorUnresolvableKeyBinding BuildErrorKind = "UNRESOLVABLE_KEY_BINDING"
	BuildErrorDirectiveShapeMismatch BuildErrorKind = "DIRECTIVE_SHAPE_MISMATCH"
	BuildErrorInvalidInput           BuildErrorKind = "INVALID_INPUT"
)

var _ error = (*BuildError)(nil)

// BuildError aborts composition. No composite schema is produced.
type BuildError struct {
	Kind     BuildErrorKind
	Message  string
	TypeName string
	Subgraph string
}

func newBuildError(kind BuildErrorKind, typeName, subgraph string, format string, args ...interface{}) *BuildError {
	return &BuildError{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		TypeName: typeName,
		Subgraph: subgraph,
	}
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *BuildError) GQLError() *gqlerror.Error {
	gErr := gqlerror.Errorf("%s", e.Message)
	gErr.Extensions = map[string]interface{}{
		"code": string(e.Kind),
	}
	if e.TypeName != "" {
		gErr.Extensions["typeName"] = e.TypeName
	}
	if e.Subgraph != "" {
		gErr.Extensions["subgraph"] = e.Subgraph
	}
	return gErr
}

// Conflicts returns every merge conflict carried by an error returned from Compose.
func Conflicts(err error) []*MergeConflict {
	if err == nil {
		return nil
	}
	var result []*MergeConflict
	var mErr *multierror.Error
	if errors.As(err, &mErr) {
		for _, e := range mErr.Errors {
			var conflict *MergeConflict
			if errors.As(e, &conflict) {
				result = append(result, conflict)
			}
		}
		return result
	}
	var conflict *MergeConflict
	if errors.As(err, &conflict) {
		result = append(result, conflict)
	}
	return result
}

// GQLErrors converts an error returned from Compose into a list of GraphQL errors.
func GQLErrors(err error) gqlerror.List {
	if err == nil {
		return nil
	}
	var errs []error
	var mErr *multierror.Error
	if errors.As(err, &mErr) {
		errs = mErr.Errors
	} else {
		errs = []error{err}
	}
	result := make(gqlerror.List, 0, len(errs))
	for _, e := range errs {
		var conflict *MergeConflict
		var buildErr *BuildError
		switch {
		case errors.As(e, &conflict):
			result = append(result, conflict.GQLError())
		case errors.As(e, &buildErr):
			result = append(result, buildErr.GQLError())
		default:
			result = append(result, gqlerror.WrapIfUnwrapped(e))
		}
	}
	return result
}

func sortConflicts(conflicts []*MergeConflict) {
	sort.SliceStable(conflicts, func(i, j int) bool {
		a, b := conflicts[i], conflicts[j]
		if a.TypeName != b.TypeName {
			return a.TypeName < b.TypeName
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Message < b.Message
	})
}
