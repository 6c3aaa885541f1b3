package correlation

import "net/http"

// Middleware binds a correlation id for the request and echoes it on the
// response. The id and request info are visible to every handler and log
// emission downstream; each request carries its own binding, so concurrent
// requests never observe each other's id.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := Bind(r.Header.Get(Header))
		w.Header().Set(Header, id)

		ctx := WithID(r.Context(), id)
		ctx = WithRequestInfo(ctx, RequestInfo{
			RemoteAddr: r.RemoteAddr,
			RequestURI: r.RequestURI,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
