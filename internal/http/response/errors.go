package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/scribe-backend/internal/platform/apierr"
)

// RespondAPIError writes err using the status and code of the first *apierr.Error in
// its chain. Anything else is a 500 with the generic message.
func RespondAPIError(c *gin.Context, err error) {
	if e, ok := apierr.As(err); ok {
		status := e.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		RespondError(c, status, e.Code, e)
		return
	}
	RespondError(c, http.StatusInternalServerError, "internal_error", errors.New("Internal server error"))
}
