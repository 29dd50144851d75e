package discovery

import "prodscout/internal/model"

// ErrorType classifies terminal pipeline failures. The wire values are
// stable snake_case identifiers consumers key on.
type ErrorType string

const (
	ErrorInvalidInput             ErrorType = "invalid_input"
	ErrorInputTooLong             ErrorType = "input_too_long"
	ErrorProjectNotFound          ErrorType = "project_not_found"
	ErrorProjectIncomplete        ErrorType = "project_incomplete"
	ErrorUnsupportedPlatform      ErrorType = "platform_not_supported"
	ErrorParsingFailed            ErrorType = "parsing_failed"
	ErrorIntentParsingFailed      ErrorType = "intent_parsing_failed"
	ErrorCriteriaValidationFailed ErrorType = "criteria_validation_failed"
	ErrorNoProductsFound          ErrorType = "no_products_found"
	ErrorCrawlFailed              ErrorType = "crawl_failed"
	ErrorNoProductsAfterFilter    ErrorType = "no_products_after_filter"
	ErrorImportFailed             ErrorType = "import_failed"
	ErrorExecutionError           ErrorType = "execution_error"
)

// Result is the pipeline's terminal envelope. Every run ends in exactly one
// Result, success or error; stage failures never surface as Go errors to the
// caller.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message"`

	ErrorType ErrorType `json:"error_type,omitempty"`

	// FilterCriteria echoes the structured criteria a successful run applied.
	FilterCriteria *model.FilterCriteria `json:"filter_criteria,omitempty"`

	// ExtractedCriteria accompanies criteria-stage failures so the caller can
	// see what the model understood.
	ExtractedCriteria *model.FilterCriteria `json:"extracted_criteria,omitempty"`

	// SuggestedPlatforms is populated on UnsupportedPlatform and is never
	// empty there.
	SuggestedPlatforms []model.Platform `json:"suggested_platforms,omitempty"`

	ProductsFound      int      `json:"products_found"`
	ProductsFiltered   int      `json:"products_filtered"`
	ProductsImported   int      `json:"products_imported"`
	ImportedProductIDs []string `json:"imported_product_ids,omitempty"`
}

// Success reports whether the run imported products.
func (r *Result) Success() bool {
	return r.Status == "success"
}

func errorResult(errType ErrorType, message string) *Result {
	return &Result{
		Status:    "error",
		Message:   message,
		ErrorType: errType,
	}
}
