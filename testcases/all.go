package testcases

// All contains all test cases, grouped by category.
// The category name is used as a prefix in generated filenames.
var All = map[string][]TestCase{
	"basic":   basicCases,
	"order":   orderCases,
	"filter":  filterCases,
	"routing": routingCases,
	"shape":   shapeCases,
}
