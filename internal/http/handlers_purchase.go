package http

import (
	"net/http"

	applog "keepmoney/internal/log"
)

// handlePurchases lists purchased items, newest first. list_id selects the
// items of one wishlist (0 or absent: simple purchases); limit <= 0 means
// every row.
func (s *Server) handlePurchases(w http.ResponseWriter, r *http.Request) {
	listID, err := queryInt(r, "list_id", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if listID < 0 {
		writeError(w, r, badRequest("invalid list_id %d", listID))
		return
	}

	rows, err := s.ledger.Purchases(r.Context(), r.PathValue("username"), listID, int(limit))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(itemRowViews(rows)).Write(w)
}

func (s *Server) handleCreatePurchase(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	var req purchaseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	at, err := req.when()
	if err != nil {
		writeError(w, r, err)
		return
	}
	item, err := req.toItem()
	if err != nil {
		writeError(w, r, err)
		return
	}

	itemID, purchaseID, err := s.ledger.RecordPurchase(r.Context(), username, item, at)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.ledgerChanged(r.Context(), applog.OpCreate, username, -item.Cost().Cents)
	NewJSONResponse().Status(http.StatusCreated).Body(purchaseCreatedResponse{ItemID: itemID, PurchaseID: purchaseID}).Write(w)
}

func (s *Server) handleDeletePurchase(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	itemID, err := pathID(r, "itemID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.RemovePurchase(r.Context(), username, itemID); err != nil {
		writeError(w, r, err)
		return
	}
	s.ledgerChanged(r.Context(), applog.OpDelete, username, 0)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
