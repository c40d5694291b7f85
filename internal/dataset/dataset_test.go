package dataset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{"CSV", FormatCSV, false},
		{" netcdf ", FormatNetCDF, false},
		{"nc", FormatNetCDF, false},
		{"h5", FormatHDF5, false},
		{"json", FormatJSON, false},
		{"parquet", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestReference_Validate_OK(t *testing.T) {
	ref := Reference{
		URL:      "https://data.giss.nasa.gov/gistemp/tabledata_v4/GLB.Ts+dSST.csv",
		Format:   FormatCSV,
		Variable: "J-D",
	}
	require.NoError(t, ref.Validate())
}

func TestReference_Validate_MissingFields(t *testing.T) {
	err := Reference{}.Validate()
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 3)
	require.Contains(t, err.Error(), "dataset URL is required")
	require.Contains(t, err.Error(), "variable is required")
}

func TestReference_Validate_BadURLAndFormat(t *testing.T) {
	err := Reference{URL: "not a url", Format: "xlsx", Variable: "t"}.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "dataset URL must be a valid URL")
	require.Contains(t, err.Error(), "dataset format must be one of")
}

func TestReference_Validate_WhitespaceVariable(t *testing.T) {
	err := Reference{URL: "https://example.com/a.csv", Format: FormatCSV, Variable: "   "}.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "variable is required")
}

func TestReference_DisplayTitle(t *testing.T) {
	require.Equal(t, "Ice Core", Reference{Title: "Ice Core"}.DisplayTitle())
	require.Equal(t, "ice-cores.csv", Reference{URL: "https://example.nasa.gov/ice-cores.csv"}.DisplayTitle())
}

func TestSearchResult_Accessors(t *testing.T) {
	r := SearchResult{
		ID:    "ds-1",
		Score: 0.8734,
		Meta: map[string]any{
			"text":    "MODIS reflectance",
			"summary": "Surface reflectance",
			"url":     "https://example.nasa.gov/modis/data.nc",
		},
	}
	require.Equal(t, "MODIS reflectance", r.Title())
	require.Equal(t, "Surface reflectance", r.Description())
	require.Equal(t, "87.3%", r.RelevancePercent())

	ref := r.Reference()
	require.Equal(t, FormatNetCDF, ref.Format)
	require.Equal(t, "https://example.nasa.gov/modis/data.nc", ref.URL)
}

func TestSearchResult_Fallbacks(t *testing.T) {
	r := SearchResult{ID: "ds-2"}
	require.Equal(t, "ds-2", r.Title())
	require.Equal(t, "No description available", r.Description())
	require.Empty(t, r.URL())
	require.Equal(t, FormatCSV, r.Reference().Format)
}

func TestSearchResult_ReferenceUsesMetaFormat(t *testing.T) {
	r := SearchResult{Meta: map[string]any{
		"url":      "https://example.com/data",
		"format":   "hdf5",
		"variable": "surface_temp",
	}}
	ref := r.Reference()
	require.Equal(t, FormatHDF5, ref.Format)
	require.Equal(t, "surface_temp", ref.Variable)
}
