package api

const root = "/api"

// Endpoints lists the server paths used by the client, relative to the base URL.
var Endpoints = struct {
	Expenditures  string
	Categories    string
	CategoryStats string
	ExcelExport   string
}{
	Expenditures:  root + "/expenditures",
	Categories:    root + "/categories",
	CategoryStats: root + "/stats/categories",
	ExcelExport:   root + "/exports/excel",
}
