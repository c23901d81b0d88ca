package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category    Category
	Message     string
	Explanation string
	DocURL      string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Config Errors (E100-E109)
	// ============================================

	"E100": {
		Category:    CategoryConfig,
		Message:     "Config file not found",
		Explanation: "No hashnav.json, hashnav.yaml, hashnav.yml or hashnav.toml was found in the project directory.",
		DocURL:      "https://hashnav.dev/docs/errors/E100",
	},
	"E101": {
		Category:    CategoryConfig,
		Message:     "Invalid config syntax",
		Explanation: "The config file could not be parsed. Check it against the format its extension names.",
		DocURL:      "https://hashnav.dev/docs/errors/E101",
	},
	"E102": {
		Category:    CategoryConfig,
		Message:     "Unsupported config format",
		Explanation: "Config files must end in .json, .yaml, .yml or .toml.",
		DocURL:      "https://hashnav.dev/docs/errors/E102",
	},
	"E103": {
		Category:    CategoryConfig,
		Message:     "Invalid initial URL",
		Explanation: "initialURL must be an absolute URL with a scheme and host, such as http://localhost/.",
		DocURL:      "https://hashnav.dev/docs/errors/E103",
	},
	"E104": {
		Category:    CategoryConfig,
		Message:     "Invalid log level",
		Explanation: "logLevel must be one of debug, info, warn or error.",
		DocURL:      "https://hashnav.dev/docs/errors/E104",
	},
	"E105": {
		Category:    CategoryConfig,
		Message:     "Invalid serve path",
		Explanation: "serve.wsPath and serve.metricsPath must start with \"/\" and must differ.",
		DocURL:      "https://hashnav.dev/docs/errors/E105",
	},

	// ============================================
	// Route Errors (E110-E119)
	// ============================================

	"E110": {
		Category:    CategoryRoutes,
		Message:     "Route table is empty",
		Explanation: "At least one route must be declared under routes.",
		DocURL:      "https://hashnav.dev/docs/errors/E110",
	},
	"E111": {
		Category:    CategoryRoutes,
		Message:     "Duplicate route name",
		Explanation: "Route names are used for named navigation and must be unique.",
		DocURL:      "https://hashnav.dev/docs/errors/E111",
	},
	"E112": {
		Category:    CategoryRoutes,
		Message:     "Invalid route path",
		Explanation: "The route path could not be added to the route table.",
		DocURL:      "https://hashnav.dev/docs/errors/E112",
	},

	// ============================================
	// Scenario Errors (E120-E129)
	// ============================================

	"E120": {
		Category:    CategoryScenario,
		Message:     "Invalid scenario",
		Explanation: "The scenario file could not be parsed or contains an unknown step.",
		DocURL:      "https://hashnav.dev/docs/errors/E120",
	},
	"E121": {
		Category:    CategoryScenario,
		Message:     "Scenario expectation failed",
		Explanation: "An expect step did not match the state of the simulated browser.",
		DocURL:      "https://hashnav.dev/docs/errors/E121",
	},
	"E122": {
		Category:    CategoryScenario,
		Message:     "Navigation failed",
		Explanation: "A navigation step was aborted with an error that the step did not expect.",
		DocURL:      "https://hashnav.dev/docs/errors/E122",
	},
	"E123": {
		Category:    CategoryScenario,
		Message:     "Browser event loop",
		Explanation: "The simulated browser kept queueing events. A listener is probably rewriting the address on every event.",
		DocURL:      "https://hashnav.dev/docs/errors/E123",
	},

	// ============================================
	// Serve Errors (E130-E139)
	// ============================================

	"E130": {
		Category:    CategoryServe,
		Message:     "Failed to start server",
		Explanation: "The development server could not listen on the configured address.",
		DocURL:      "https://hashnav.dev/docs/errors/E130",
	},
	"E131": {
		Category:    CategoryServe,
		Message:     "Server shutdown failed",
		Explanation: "The server did not drain its connections before the shutdown deadline.",
		DocURL:      "https://hashnav.dev/docs/errors/E131",
	},
}

// GetAllCodes returns all registered error codes in order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
