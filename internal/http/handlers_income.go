package http

import (
	"net/http"

	applog "keepmoney/internal/log"
)

func (s *Server) handleIncomes(w http.ResponseWriter, r *http.Request) {
	rows, err := s.ledger.Incomes(r.Context(), r.PathValue("username"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(incomeViews(rows)).Write(w)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	var req incomeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.toIncome(username, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	id, err := s.ledger.RecordIncome(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.ledgerChanged(r.Context(), applog.OpCreate, username, in.Value.Cents)
	NewJSONResponse().Status(http.StatusCreated).Body(idResponse{ID: id}).Write(w)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.RemoveIncome(r.Context(), username, id); err != nil {
		writeError(w, r, err)
		return
	}
	s.ledgerChanged(r.Context(), applog.OpDelete, username, 0)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
