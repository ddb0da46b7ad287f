// Package domain models hourly temperature forecasts produced offline by
// several forecasting models for a fixed set of Ahmedabad regions.
//
// # Data Source
//
// Forecasts are precomputed and dropped into a single data directory as CSV
// files. Nothing in this service trains or runs a model; it only reads,
// filters and scores what is on disk.
//
// # File Naming
//
//	<model>_<region>_<year>.csv          hourly series, e.g. "holtwinters_bopal_2024.csv"
//	<model>_model_metrics_<year>.csv     per-region RMSE summary
//	param_*.csv                          model parameters, ignored
//
// The model identifier is the token before the first underscore. Files whose
// name contains "model_metrics" or "param_" never contribute a model.
//
// # Series Schema
//
//	date                   calendar date (2006-01-02, optionally with a time part)
//	hour                   0-23
//	predicted_temperature  degrees Celsius
//	actual_temperature     degrees Celsius, optional; absent for unseen years
//
// Rows are assumed to be in ascending hour order within each day. The order
// of the source file is preserved on load.
//
// # Metrics Schema
//
//	region       region name, case and surrounding whitespace are ignored
//	rmse_<year>  precomputed RMSE for that region
//
// # Regions and Months
//
// Regions form a closed set of five names (see [Regions]). Months are keyed by
// two-digit strings "01" through "12" for paths and query parameters.
//
// # Errors
//
// Every failure is local to one query. [ErrNotFound] is an expected missing
// file, [ErrSchema] a missing required column, [ErrParse] an unparseable date
// or number. [ErrEmptyResult] is not a failure: a valid query that matched no
// rows, kept distinct so "no data" is never mistaken for a load error.
package domain
