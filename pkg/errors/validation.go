package errors

import (
	"sort"
	"strings"
)

// ValidationError 表单字段级错误，key 为字段名，value 为错误原因。
// errors.Is(err, ValidationFailed) 对它成立。
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add 记录字段错误，同一字段只保留第一条
func (v *ValidationError) Add(field, reason string) {
	if _, exists := v.Fields[field]; exists {
		return
	}
	v.Fields[field] = reason
}

func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.Fields) > 0
}

// OrNil 没有字段错误时返回 nil，方便 return v.OrNil()
func (v *ValidationError) OrNil() error {
	if !v.HasErrors() {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	names := make([]string, 0, len(v.Fields))
	for name := range v.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString(ValidationFailed.Message)
	sb.WriteString(": ")
	for i, name := range names {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(name)
		sb.WriteString(" ")
		sb.WriteString(v.Fields[name])
	}
	return sb.String()
}

func (v *ValidationError) Is(target error) bool {
	def, ok := target.(Definition)
	return ok && def.Code == ValidationFailed.Code
}
