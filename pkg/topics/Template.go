// Package topics with rendering of parameterized MQTT topic templates.
// Templates contain placeholders in curly braces, eg "things/{thingName}/get",
// that are substituted with request parameters before publishing or
// subscribing. Rendering fails rather than produce a partial topic.
package topics

import (
	"fmt"
	"strings"
)

// TemplateError describes why a topic template could not be rendered
type TemplateError struct {
	// Template that failed to render
	Template string
	// Param with the placeholder name that caused the failure, "" if none
	Param string
	// Reason with a short description of the failure
	Reason string
}

// Error returns the template, reason and offending placeholder
func (e *TemplateError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("topic template '%s': %s '%s'", e.Template, e.Reason, e.Param)
	}
	return fmt.Sprintf("topic template '%s': %s", e.Template, e.Reason)
}

// Render substitutes the placeholders of a topic template with parameter
// values and returns the resulting topic.
//
// Substitution is a single pass from left to right. Each placeholder must
// have a non-empty value in params, so a rendered topic never contains a
// half-filled segment. Braces in parameter values are rejected as they
// would re-introduce a placeholder in the result.
//
//	template with "{name}" placeholders, eg "$aws/things/{thingName}/shadow/get"
//	params maps each placeholder name to its value
//
// Returns the rendered topic, or a *TemplateError naming the placeholder
// that could not be substituted. The returned topic is guaranteed free of
// curly braces.
func Render(template string, params map[string]string) (string, error) {
	var sb strings.Builder
	remaining := template

	for {
		open := strings.IndexByte(remaining, '{')
		if open < 0 {
			break
		}
		// text before the placeholder must not hold a stray closing brace
		if stray := strings.IndexByte(remaining[:open], '}'); stray >= 0 {
			return "", &TemplateError{Template: template, Reason: "stray '}' outside placeholder"}
		}
		sb.WriteString(remaining[:open])
		remaining = remaining[open+1:]

		end := strings.IndexByte(remaining, '}')
		if end < 0 {
			return "", &TemplateError{Template: template, Reason: "unterminated placeholder"}
		}
		name := remaining[:end]
		remaining = remaining[end+1:]

		if name == "" {
			return "", &TemplateError{Template: template, Reason: "empty placeholder"}
		}
		if strings.IndexByte(name, '{') >= 0 {
			return "", &TemplateError{Template: template, Param: name, Reason: "nested placeholder"}
		}
		value, found := params[name]
		if !found {
			return "", &TemplateError{Template: template, Param: name, Reason: "missing value for placeholder"}
		}
		if value == "" {
			return "", &TemplateError{Template: template, Param: name, Reason: "empty value for placeholder"}
		}
		if strings.ContainsAny(value, "{}") {
			return "", &TemplateError{Template: template, Param: name, Reason: "brace in value for placeholder"}
		}
		sb.WriteString(value)
	}
	if stray := strings.IndexByte(remaining, '}'); stray >= 0 {
		return "", &TemplateError{Template: template, Reason: "stray '}' outside placeholder"}
	}
	sb.WriteString(remaining)
	return sb.String(), nil
}

// Placeholders returns the placeholder names of a template in order of
// appearance. Malformed templates return the names up to the malformation.
func Placeholders(template string) []string {
	names := make([]string, 0)
	remaining := template
	for {
		open := strings.IndexByte(remaining, '{')
		if open < 0 {
			return names
		}
		remaining = remaining[open+1:]
		end := strings.IndexByte(remaining, '}')
		if end < 0 {
			return names
		}
		names = append(names, remaining[:end])
		remaining = remaining[end+1:]
	}
}
