package httpserver

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
	"github.com/swaggest/swgui/v5emb"
)

type healthResponse struct {
	OK     bool `json:"ok"`
	Images int  `json:"images"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Spelling Quiz API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Show a picture, type its word, collect points.")

	// GET /health
	getHealth, _ := r.NewOperationContext(http.MethodGet, "/health")
	getHealth.SetSummary("Health check")
	getHealth.AddRespStructure(healthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getHealth)

	// POST /api/round
	postRound, _ := r.NewOperationContext(http.MethodPost, "/api/round")
	postRound.SetSummary("Start a round")
	postRound.SetDescription("Picks a random picture and makes its word the answer for the next guess.")
	postRound.AddRespStructure(RoundResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postRound.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusInternalServerError))
	_ = r.AddOperation(postRound)

	// POST /api/guess
	postGuess, _ := r.NewOperationContext(http.MethodPost, "/api/guess")
	postGuess.SetSummary("Submit a guess")
	postGuess.SetDescription("Compares the guess, trimmed and lowercased, with the current word. Correct answers add 10 points.")
	postGuess.AddReqStructure(GuessRequest{})
	postGuess.AddRespStructure(GuessResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postGuess.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postGuess.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postGuess)

	// POST /api/reset
	postReset, _ := r.NewOperationContext(http.MethodPost, "/api/reset")
	postReset.SetSummary("Reset score")
	postReset.AddRespStructure(SessionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postReset)

	// GET /api/session
	getSession, _ := r.NewOperationContext(http.MethodGet, "/api/session")
	getSession.SetSummary("Session state")
	getSession.SetDescription("Score, counters and the phase of the current round.")
	getSession.AddRespStructure(SessionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getSession)

	// DELETE /api/session
	deleteSession, _ := r.NewOperationContext(http.MethodDelete, "/api/session")
	deleteSession.SetSummary("End session")
	deleteSession.SetDescription("Forgets the score and round of the current session.")
	deleteSession.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	_ = r.AddOperation(deleteSession)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	data, _ := json.MarshalIndent(newOpenAPISpec(), "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

func handleSwaggerUI() http.Handler {
	return v5emb.New("Spelling Quiz API", "/openapi.json", "/docs")
}
