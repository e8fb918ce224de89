package middleware

import (
	"net/http"
	"time"

	"github.com/ulule/limiter/v3"
	mhttp "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimit allows perMinute requests per client IP. A non-positive
// perMinute disables limiting. Rejected requests get 429 with the RATE001
// code used by the console's error catalogue.
func RateLimit(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	instance := limiter.New(memory.NewStore(), limiter.Rate{
		Period: time.Minute,
		Limit:  int64(perMinute),
	})
	mw := mhttp.NewMiddleware(instance,
		mhttp.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			writeJSONError(w, http.StatusTooManyRequests, "Demasiadas solicitudes", "RATE001")
		}),
	)
	return mw.Handler
}
