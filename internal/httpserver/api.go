package httpserver

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/spellquiz/internal/catalog"
	"github.com/robalobadob/spellquiz/internal/quiz"
	"github.com/robalobadob/spellquiz/internal/round"
	"github.com/robalobadob/spellquiz/internal/session"
)

// RoundResponse is returned by POST /api/round.
type RoundResponse struct {
	ImagePath string `json:"imagePath"`
	ImageURL  string `json:"imageUrl"`
	Score     int    `json:"score"`
}

// GuessRequest is the body of POST /api/guess.
type GuessRequest struct {
	Guess string `json:"guess"`
}

// GuessResponse is returned by POST /api/guess.
type GuessResponse struct {
	IsCorrect   bool   `json:"isCorrect"`
	CorrectWord string `json:"correctWord"`
	UserGuess   string `json:"userGuess"`
	Awarded     int    `json:"awarded"`
	Score       int    `json:"score"`
}

// SessionResponse is returned by GET /api/session and POST /api/reset.
type SessionResponse struct {
	Phase    session.Phase `json:"phase"`
	Score    int           `json:"score"`
	Rounds   int           `json:"rounds"`
	Correct  int           `json:"correct"`
	ImageURL string        `json:"imageUrl,omitempty"`
	Last     *round.Result `json:"last,omitempty"`
}

func sessionResponse(st *session.State) SessionResponse {
	res := SessionResponse{
		Phase:   st.Phase,
		Score:   st.Score,
		Rounds:  st.Rounds,
		Correct: st.Correct,
		Last:    st.Last,
	}
	if st.Phase == session.PhaseAwaitingGuess && st.ImagePath != "" {
		res.ImageURL = imageURL(st.ImagePath)
	}
	return res
}

func (s *Server) handleAPIRound(w http.ResponseWriter, r *http.Request) {
	rd, err := s.quiz.NewRound(r.Context(), sessionID(r.Context()))
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RoundResponse{
		ImagePath: rd.ImagePath,
		ImageURL:  imageURL(rd.ImagePath),
		Score:     rd.Score,
	})
}

func (s *Server) handleAPIGuess(w http.ResponseWriter, r *http.Request) {
	var req GuessRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	out, err := s.quiz.Submit(r.Context(), sessionID(r.Context()), req.Guess)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, guessResponse(out))
}

func guessResponse(out quiz.Outcome) GuessResponse {
	return GuessResponse{
		IsCorrect:   out.Correct,
		CorrectWord: out.Expected,
		UserGuess:   out.Guess,
		Awarded:     out.Awarded,
		Score:       out.Score,
	}
}

func (s *Server) handleAPIReset(w http.ResponseWriter, r *http.Request) {
	st, err := s.quiz.Reset(r.Context(), sessionID(r.Context()))
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(st))
}

func (s *Server) handleAPISession(w http.ResponseWriter, r *http.Request) {
	st, err := s.quiz.State(r.Context(), sessionID(r.Context()))
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(st))
}

// apiError maps quiz errors onto status codes.
func (s *Server) apiError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrNoActiveRound):
		writeError(w, http.StatusConflict, "no_active_round")
	case errors.Is(err, catalog.ErrEmptyCatalog):
		writeError(w, http.StatusInternalServerError, "no_images")
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("quiz api")
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}

func (s *Server) handleAPIEnd(w http.ResponseWriter, r *http.Request) {
	if err := s.quiz.End(r.Context(), sessionID(r.Context())); err != nil {
		s.apiError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
