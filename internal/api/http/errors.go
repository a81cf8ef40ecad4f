package http

import (
	"net/http"

	"github.com/mathevolve/mathevolve-api/internal/api"
	"github.com/mathevolve/mathevolve-api/internal/assessment"
)

// writeServiceErr writes domain failures with their own code and anything
// else as a logged 500.
func writeServiceErr(w http.ResponseWriter, op string, err error, fallback string) {
	if e, ok := assessment.AsError(err); ok {
		api.WriteErr(w, string(e.Code), e.Message)
		return
	}
	api.Internal(w, op, err, fallback)
}
