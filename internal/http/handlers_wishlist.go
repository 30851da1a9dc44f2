package http

import (
	"net/http"

	"keepmoney/internal/core"
	applog "keepmoney/internal/log"
)

func (s *Server) handleWishLists(w http.ResponseWriter, r *http.Request) {
	confirmed, err := queryBool(r, "confirmed")
	if err != nil {
		writeError(w, r, err)
		return
	}
	lists, err := s.ledger.WishLists(r.Context(), r.PathValue("username"), confirmed)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(wishListViews(lists)).Write(w)
}

func (s *Server) handleCreateWishList(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	var req wishListRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	list, items, err := req.toWishList()
	if err != nil {
		writeError(w, r, err)
		return
	}

	id, err := s.ledger.CreateWishList(r.Context(), username, list, items)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.ledgerChanged(r.Context(), applog.OpCreate, username, 0)
	NewJSONResponse().Status(http.StatusCreated).Body(idResponse{ID: id}).Write(w)
}

func (s *Server) handleWishListItems(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := s.ledger.WishListItems(r.Context(), r.PathValue("username"), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(wishListItemViews(items)).Write(w)
}

func (s *Server) handleConfirmWishList(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.ConfirmWishList(r.Context(), username, id); err != nil {
		writeError(w, r, err)
		return
	}
	s.ledgerChanged(r.Context(), applog.OpConfirm, username, 0)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleDeleteWishList(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.DeleteWishList(r.Context(), username, id); err != nil {
		writeError(w, r, err)
		return
	}
	s.ledgerChanged(r.Context(), applog.OpDelete, username, 0)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// handleUpdateItem changes price and amount of a wishlist item.
func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req itemUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	price, err := parseMoney(req.Price)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if req.Amount < 1 {
		writeError(w, r, core.ErrInvalidQuantity)
		return
	}

	if err := s.ledger.UpdateWishListItem(r.Context(), username, id, price, req.Amount); err != nil {
		writeError(w, r, err)
		return
	}
	s.ledgerChanged(r.Context(), applog.OpUpdate, username, price.Times(req.Amount).Cents)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
