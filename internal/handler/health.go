package handler

import (
	"net/http"

	goversion "github.com/caarlos0/go-version"
)

// HandleHealthz responds with a 200 OK and a JSON body indicating the server is healthy.
func HandleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleVersion reports the build information of the running binary.
func HandleVersion(info goversion.Info) http.HandlerFunc {
	body := map[string]string{
		"name":      info.Name,
		"version":   info.GitVersion,
		"commit":    info.GitCommit,
		"treeState": info.GitTreeState,
		"buildDate": info.BuildDate,
		"builtBy":   info.BuiltBy,
		"goVersion": info.GoVersion,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, body)
	}
}
