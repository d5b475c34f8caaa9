package handlers

import (
	"encoding/json"
	"net/http"
)

// Health reports basic liveness. The gateway has no required database, so a
// 200 here means the process is up and serving.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
