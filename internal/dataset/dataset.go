// Package dataset defines the dataset references and search results that flow
// between search, selection, and notebook generation.
package dataset

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Format identifies the on-disk format of a dataset.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatNetCDF Format = "netcdf"
	FormatHDF5   Format = "hdf5"
	FormatJSON   Format = "json"
)

// Formats lists the supported formats in display order.
var Formats = []Format{FormatCSV, FormatNetCDF, FormatHDF5, FormatJSON}

// ParseFormat converts a user-supplied string into a Format.
// Matching is case-insensitive; common aliases are accepted.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "netcdf", "nc", "netcdf4":
		return FormatNetCDF, nil
	case "hdf5", "h5", "hdf":
		return FormatHDF5, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported dataset format %q (want csv, netcdf, hdf5 or json)", s)
}

// Valid reports whether f is one of the supported formats.
func (f Format) Valid() bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (f Format) String() string { return string(f) }

// Reference points at a dataset to analyze. It is a value type: a new
// submission always carries its own copy.
type Reference struct {
	URL      string `json:"dataset_url" validate:"required,url"`
	Format   Format `json:"dataset_format" validate:"required,oneof=csv netcdf hdf5 json"`
	Variable string `json:"variable" validate:"required"`
	Title    string `json:"title,omitempty"`
}

// IsZero reports whether no field of the reference is set.
func (r Reference) IsZero() bool {
	return r == Reference{}
}

// DisplayTitle returns the title, or the last path segment of the URL when
// no title was given.
func (r Reference) DisplayTitle() string {
	if t := strings.TrimSpace(r.Title); t != "" {
		return t
	}
	if u, err := url.Parse(r.URL); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return r.URL
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// FieldError describes one invalid field of a Reference.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError aggregates every invalid field found in a Reference.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "invalid dataset reference: " + strings.Join(msgs, "; ")
}

// Validate checks that URL, Format and Variable are present and well formed.
// Title is optional.
func (r Reference) Validate() error {
	r.URL = strings.TrimSpace(r.URL)
	r.Variable = strings.TrimSpace(r.Variable)

	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validating dataset reference: %w", err)
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
		})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	name := map[string]string{
		"URL":      "dataset URL",
		"Format":   "dataset format",
		"Variable": "variable",
	}[fe.Field()]
	if name == "" {
		name = strings.ToLower(fe.Field())
	}

	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "url":
		return name + " must be a valid URL"
	case "oneof":
		return name + " must be one of csv, netcdf, hdf5, json"
	default:
		return fmt.Sprintf("%s failed %s validation", name, fe.Tag())
	}
}
