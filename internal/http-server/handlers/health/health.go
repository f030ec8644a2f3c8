package health

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"linkvault/lib/api/response"
)

func Check(_ *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.Ok("linkvault bot is running"))
	}
}
