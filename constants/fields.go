package constants

// Sentinel is the placeholder the bot renders for a field it could not determine.
const Sentinel = "N/A"

// ProfileFieldKeys holds the six schema field names, in reply order.
// Stable values (the LLM is instructed to emit these exact keys).
var ProfileFieldKeys = []string{
	"name",
	"profession",
	"current_company",
	"current_location",
	"email",
	"phone",
}
