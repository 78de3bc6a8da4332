package action

import (
	"sort"
	"strings"
)

// Request is the read-only view of the parameters submitted with an action.
type Request interface {
	// Param returns the first value of name, or "" when absent.
	Param(name string) string
	// Values returns every value of name.
	Values(name string) []string
	// Names returns the parameter names in sorted order.
	Names() []string
}

// Params is a map-backed Request.
type Params map[string][]string

func (p Params) Param(name string) string {
	values := p[name]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func (p Params) Values(name string) []string {
	return append([]string(nil), p[name]...)
}

func (p Params) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseParams builds Params from "name=value" pairs. Repeated names accumulate
// values. A bare "name" is stored with an empty value so it can act as a button.
func ParseParams(pairs []string) Params {
	params := Params{}
	for _, pair := range pairs {
		name, value, _ := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		params[name] = append(params[name], value)
	}
	return params
}

// SubmitButton returns the name of the first parameter, in sorted order, that
// starts with "submit". When none is present, fallback is returned.
func SubmitButton(req Request, fallback string) string {
	if req == nil {
		return fallback
	}
	for _, name := range req.Names() {
		if strings.HasPrefix(name, "submit") {
			return name
		}
	}
	return fallback
}
