package dataset

// Example is a ready-made form for trying the generator.
type Example struct {
	Name        string
	Description string
	Ref         Reference
}

// Examples are offered in the workflow form.
var Examples = []Example{
	{
		Name:        "GISS Temperature",
		Description: "Global temperature anomalies (CSV)",
		Ref: Reference{
			URL:      "https://data.giss.nasa.gov/gistemp/tabledata_v4/GLB.Ts+dSST.csv",
			Format:   FormatCSV,
			Variable: "J-D",
			Title:    "GISS Temperature Analysis",
		},
	},
	{
		Name:        "MODIS Data",
		Description: "Surface reflectance (NetCDF)",
		Ref: Reference{
			URL:      "https://example.nasa.gov/modis/data.nc",
			Format:   FormatNetCDF,
			Variable: "surface_reflectance",
			Title:    "MODIS Surface Reflectance",
		},
	},
	{
		Name:        "Ice Core Data",
		Description: "CO2 measurements (CSV)",
		Ref: Reference{
			URL:      "https://example.nasa.gov/ice-cores.csv",
			Format:   FormatCSV,
			Variable: "co2_ppm",
			Title:    "Ice Core CO2 Analysis",
		},
	},
}
