package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/chronodrachma/ethamount/pkg/core/types"
	"github.com/chronodrachma/ethamount/pkg/ledger"
)

type Server struct {
	store ledger.Store
}

func NewServer(store ledger.Store) *Server {
	return &Server{
		store: store,
	}
}

// Handler returns the HTTP routes served by the node.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/balance", s.handleBalance)
	mux.HandleFunc("/supply", s.handleSupply)
	mux.HandleFunc("/convert", s.handleConvert)
	mux.HandleFunc("/transfer", s.handleTransfer)
	return mux
}

func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.Handler())
}

// AmountResponse carries both the exact wei count and its display forms.
// Wei is a decimal string: JSON numbers cannot hold 256-bit values.
type AmountResponse struct {
	Address string  `json:"address,omitempty"`
	Wei     string  `json:"wei"`
	Ether   float64 `json:"ether"`
	Display string  `json:"display"`
}

func newAmountResponse(addr string, a types.Amount) AmountResponse {
	return AmountResponse{
		Address: addr,
		Wei:     a.Wei().Dec(),
		Ether:   a.Ether(),
		Display: a.String(),
	}
}

// GET /balance?addr=<0x hex>
func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	addrHex := r.URL.Query().Get("addr")
	if addrHex == "" {
		http.Error(w, "missing addr parameter", http.StatusBadRequest)
		return
	}

	addr, err := types.AddressFromHex(addrHex)
	if err != nil {
		http.Error(w, "invalid address format", http.StatusBadRequest)
		return
	}

	balance, err := s.store.Balance(addr)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to get balance: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, newAmountResponse(addr.Hex(), balance))
}

// GET /supply
func (s *Server) handleSupply(w http.ResponseWriter, r *http.Request) {
	supply, err := s.store.TotalSupply()
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to get supply: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, newAmountResponse("", supply))
}

// GET /convert?ether=<decimal> or /convert?wei=<integer>
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		amount types.Amount
		err    error
	)
	switch {
	case q.Get("wei") != "":
		amount, err = types.ParseWei(q.Get("wei"))
	case q.Get("ether") != "":
		var eth float64
		eth, err = strconv.ParseFloat(q.Get("ether"), 64)
		if err == nil {
			amount, err = types.NewAmountFromEther(eth)
		}
	default:
		http.Error(w, "missing ether or wei parameter", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid amount: %v", err), http.StatusBadRequest)
		return
	}

	writeJSON(w, newAmountResponse("", amount))
}

// TransferRequest moves wei between two ledger accounts.
type TransferRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Wei  string `json:"wei"`
	Fee  string `json:"fee"` // Optional, defaults to 0.
}

// POST /transfer
func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "only POST allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	var req TransferRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	from, err := types.AddressFromHex(req.From)
	if err != nil {
		http.Error(w, "invalid from address", http.StatusBadRequest)
		return
	}
	to, err := types.AddressFromHex(req.To)
	if err != nil {
		http.Error(w, "invalid to address", http.StatusBadRequest)
		return
	}
	amount, err := types.ParseWei(req.Wei)
	if err != nil {
		http.Error(w, "invalid wei amount", http.StatusBadRequest)
		return
	}
	fee := types.Zero
	if req.Fee != "" {
		if fee, err = types.ParseWei(req.Fee); err != nil {
			http.Error(w, "invalid fee amount", http.StatusBadRequest)
			return
		}
	}

	if err := s.store.Transfer(from, to, amount, fee); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, types.ErrOverflow) || errors.Is(err, ledger.ErrZeroAddress) {
			status = http.StatusBadRequest
		}
		http.Error(w, fmt.Sprintf("rejected: %v", err), status)
		return
	}

	balance, err := s.store.Balance(from)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to get balance: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, newAmountResponse(from.Hex(), balance))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
