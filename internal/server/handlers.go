package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/bobmcallan/finaos/internal/common"
	"github.com/bobmcallan/finaos/internal/interfaces"
	"github.com/bobmcallan/finaos/internal/models"
	"github.com/bobmcallan/finaos/internal/services/scout"
)

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// --- Scout handlers ---

// handleScoutScan runs one full harvest scan. With ?format=text the
// rendered report is returned instead of JSON.
func (s *Server) handleScoutScan(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	report, err := s.app.ScoutService.Scan(r.Context())
	if err != nil {
		if errors.Is(err, scout.ErrNoHoldings) {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Scan error: %v", err))
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(scout.RenderText(report)))
		return
	}

	WriteJSON(w, http.StatusOK, report)
}

// --- Holdings & sync handlers ---

func (s *Server) handleHoldings(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	lots, err := s.app.Vault.ReadHoldings(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error reading holdings: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(lots),
		"holdings": lots,
	})
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	result, err := s.app.SyncService.SyncAll(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Sync error: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// --- Account handlers ---

type linkAccountRequest struct {
	AccountID   string `json:"account_id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Subtype     string `json:"subtype"`
	AccessToken string `json:"access_token"`
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		accounts, err := s.app.Vault.ListAccounts(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error listing accounts: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"count":    len(accounts),
			"accounts": accounts,
		})

	case http.MethodPost:
		var req linkAccountRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		if req.AccountID == "" || req.AccessToken == "" {
			WriteError(w, http.StatusBadRequest, "account_id and access_token are required")
			return
		}

		account := &models.Account{
			AccountID:   req.AccountID,
			Name:        req.Name,
			Type:        req.Type,
			Subtype:     req.Subtype,
			AccessToken: req.AccessToken,
		}
		if err := s.app.Vault.SaveAccount(r.Context(), account); err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error saving account: %v", err))
			return
		}

		if err := s.app.Vault.AppendAudit(r.Context(), "SERVER", "ACCOUNT_LINKED",
			fmt.Sprintf("Linked account %s (%s/%s)", req.AccountID, req.Type, req.Subtype)); err != nil {
			s.logger.Warn().Err(err).Msg("Audit write failed")
		}

		WriteJSON(w, http.StatusCreated, account)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) routeAccount(w http.ResponseWriter, r *http.Request) {
	accountID := PathParam(r.URL.Path, "/api/accounts/", "")
	if accountID == "" {
		WriteError(w, http.StatusBadRequest, "Account ID is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		account, err := s.app.Vault.GetAccount(r.Context(), accountID)
		if err != nil {
			WriteError(w, http.StatusNotFound, fmt.Sprintf("Account not found: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, account)

	case http.MethodDelete:
		if err := s.app.Vault.DeleteAccount(r.Context(), accountID); err != nil {
			WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error deleting account: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"deleted": accountID})

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodDelete)
	}
}

// --- Price handlers ---

// handlePriceHistory serves GET /api/prices/{symbol}/history.
func (s *Server) handlePriceHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := PathParam(r.URL.Path, "/api/prices/", "/history")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	opts := []interfaces.EODOption{}
	if days, err := strconv.Atoi(r.URL.Query().Get("days")); err == nil && days > 0 {
		to := time.Now()
		from := to.AddDate(0, 0, -days)
		opts = append(opts, interfaces.WithDateRange(from, to))
	}

	series, err := s.app.MarketClient.GetEOD(r.Context(), symbol, opts...)
	if err != nil {
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Price history error: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, series)
}

// --- Audit handlers ---

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	limit := 50
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}

	entries, err := s.app.Vault.ListAudit(r.Context(), limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error listing audit log: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(entries),
		"entries": entries,
	})
}
