// Package importer contains the one-time migration utility that
// resolves approver names from legacy spreadsheets ("LastName,
// FirstName") to employee ids. It is not part of the steady-state
// workflow; ambiguity is reported, never silently first-matched.
package importer

import (
	"fmt"
	"strings"

	"github.com/lumenhr/bonus-approval/internal/domain/entity"
)

// MatchResult maps each input name to a resolved employee id.
type MatchResult struct {
	// Resolved maps the original input name to the employee id.
	Resolved map[string]string

	// Errors lists every name that could not be resolved uniquely,
	// with a human-readable explanation.
	Errors []string
}

// MatchApprovers resolves "LastName, FirstName" strings against the
// employee list. Matching is case-insensitive on the normalized full
// name; a name matching zero or more than one employee goes to the
// errors list.
func MatchApprovers(names []string, employees []*entity.Employee) *MatchResult {
	byName := make(map[string][]*entity.Employee)
	for _, emp := range employees {
		key := normalizeName(emp.FullName)
		byName[key] = append(byName[key], emp)
	}

	result := &MatchResult{Resolved: make(map[string]string)}
	for _, name := range names {
		key := normalizeLastFirst(name)
		if key == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("%q: not in \"LastName, FirstName\" format", name))
			continue
		}

		matches := byName[key]
		switch len(matches) {
		case 0:
			result.Errors = append(result.Errors, fmt.Sprintf("%q: no matching employee", name))
		case 1:
			result.Resolved[name] = matches[0].EmployeeID
		default:
			ids := make([]string, len(matches))
			for i, m := range matches {
				ids[i] = m.EmployeeID
			}
			result.Errors = append(result.Errors,
				fmt.Sprintf("%q: ambiguous, matches %s", name, strings.Join(ids, ", ")))
		}
	}
	return result
}

// normalizeLastFirst converts "LastName, FirstName" to the normalized
// "firstname lastname" key, or "" if the input is not in that format.
func normalizeLastFirst(name string) string {
	parts := strings.SplitN(name, ",", 2)
	if len(parts) != 2 {
		return ""
	}
	last := strings.TrimSpace(parts[0])
	first := strings.TrimSpace(parts[1])
	if last == "" || first == "" {
		return ""
	}
	return normalizeName(first + " " + last)
}

// normalizeName lowercases and collapses interior whitespace.
func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
