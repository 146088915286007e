package http

import (
	"encoding/json"
	"net/http"
)

// Every endpoint answers with the same envelope the original front end
// consumed: {success, responseType, data}. Failures carry a reason string
// inside data; transport status is 200 either way.
type responseEnvelope struct {
	Success      bool        `json:"success"`
	ResponseType string      `json:"responseType"`
	Data         interface{} `json:"data"`
}

type failureData struct {
	Reason string `json:"reason"`
}

func writeSuccess(w http.ResponseWriter, responseType string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(responseEnvelope{
		Success:      true,
		ResponseType: responseType,
		Data:         data,
	})
}

func writeFailure(w http.ResponseWriter, responseType, reason string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(responseEnvelope{
		Success:      false,
		ResponseType: responseType,
		Data:         failureData{Reason: reason},
	})
}
