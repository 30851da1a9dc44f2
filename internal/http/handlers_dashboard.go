package http

import (
	"net/http"
)

// handleBalance serves the balance of a user from the cache when fresh.
func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	if b, ok := s.balances.Get(username); ok {
		NewJSONResponse().Header("X-Cache", "HIT").Body(newBalanceView(b)).Write(w)
		return
	}

	b, err := s.ledger.Balance(r.Context(), username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.balances.Set(username, b)
	NewJSONResponse().Header("X-Cache", "MISS").Body(newBalanceView(b)).Write(w)
}

func (s *Server) handleCounts(w http.ResponseWriter, r *http.Request) {
	c, err := s.ledger.Counts(r.Context(), r.PathValue("username"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(c).Write(w)
}
