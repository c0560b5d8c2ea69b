package api

import "net/http"

func (d Dependencies) wsHandler(w http.ResponseWriter, r *http.Request) {
	if d.Hub == nil {
		http.Error(w, "websocket hub not running", http.StatusServiceUnavailable)
		return
	}
	d.Hub.Serve(w, r)
}
