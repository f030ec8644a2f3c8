package stats

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"linkvault/entity"
	"linkvault/lib/api/response"
	"linkvault/lib/sl"
)

type Core interface {
	Stats() (*entity.Stats, error)
}

func Get(log *slog.Logger, core Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := core.Stats()
		if err != nil {
			log.Error("collecting stats", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to collect statistics"))
			return
		}
		render.JSON(w, r, response.Ok(stats))
	}
}
