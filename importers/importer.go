package importers

import (
	"context"

	"github.com/UnownHash/Chatot/labeler"
)

// Importer stores a computed set of label points somewhere.
type Importer interface {
	ImporterName() string
	ImportLabelPoints(context.Context, *labeler.Result) error
}
