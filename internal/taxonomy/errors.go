package taxonomy

import "errors"

var (
	ErrInvalidTaxonomy      = errors.New("invalid category taxonomy")
	ErrInvalidTaxCategories = errors.New("invalid tax category list")
)
