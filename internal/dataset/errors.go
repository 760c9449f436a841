package dataset

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// DataLoadError reports a dataset that could not be read: the file is
// missing, unreadable, lacks a required column, or has a malformed row.
type DataLoadError struct {
	Dataset string
	Path    string
	// Row is the 1-based data row (header excluded), 0 when the error is
	// about the file as a whole.
	Row int
	Err error
}

func (e *DataLoadError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("load %s (%s) row %d: %v", e.Dataset, e.Path, e.Row, e.Err)
	}
	return fmt.Sprintf("load %s (%s): %v", e.Dataset, e.Path, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

var validate = validator.New()

// Validate checks a loaded record against its struct tags.
func Validate(record any) error {
	return validate.Struct(record)
}

// Options controls which datasets must be present.
type Options struct {
	// Required names the datasets whose absence is fatal. A nil slice
	// means all four are required.
	Required []string
}

// IsRequired reports whether the named dataset must load under these options.
func (o Options) IsRequired(name string) bool {
	if o.Required == nil {
		return true
	}
	for _, r := range o.Required {
		if r == name {
			return true
		}
	}
	return false
}
