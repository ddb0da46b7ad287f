// Command forecastctl queries and validates a forecast data directory from the
// command line.
package main

import "github.com/couchcryptid/forecast-scoring-service/cmd/forecastctl/cmd"

func main() {
	cmd.Execute()
}
