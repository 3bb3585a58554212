package router

// Route is the (index document, fallback path) pair the dev server uses:
// the index document is served at the server root and the fallback path is
// rewritten to for any request that matches no real file.
type Route struct {
	IndexDocument string
	FallbackPath  string
}

var (
	appRoute   = Route{IndexDocument: "index.html", FallbackPath: "/index.html"}
	embedRoute = Route{IndexDocument: "index-embed.html", FallbackPath: "/index-embed.html"}
)

// Select picks the route pair for the given embed mode. The zero value of
// the flag yields the standard pair, so an unresolvable environment still
// produces a working server.
func Select(embedMode bool) Route {
	if embedMode {
		return embedRoute
	}
	return appRoute
}
