package http

import (
	"net/http"
	"strconv"

	"github.com/YelzhanWeb/restaurant/internal/adapter/logger"
	"github.com/YelzhanWeb/restaurant/internal/domain"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"
)

type TableHandler struct {
	registry     interfaces.RegistryService
	reservations interfaces.ReservationService
	logger       logger.Logger
}

func NewTableHandler(registry interfaces.RegistryService, reservations interfaces.ReservationService, logger logger.Logger) *TableHandler {
	return &TableHandler{
		registry:     registry,
		reservations: reservations,
		logger:       logger,
	}
}

type RegisterTableRequest struct {
	Number   int    `json:"table_number"`
	Capacity int    `json:"capacity"`
	Location string `json:"location"`
	Shape    string `json:"shape"`
}

type SetTableStatusRequest struct {
	Status string `json:"status"`
}

func (h *TableHandler) RegisterTable(w http.ResponseWriter, r *http.Request) {
	companyID, err := pathID(r, "companyID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req RegisterTableRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	table, err := h.registry.RegisterTable(r.Context(), interfaces.RegisterTableCommand{
		CompanyID: companyID,
		Number:    req.Number,
		Capacity:  req.Capacity,
		Location:  req.Location,
		Shape:     domain.TableShape(req.Shape),
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, newTableResponse(table))
}

func (h *TableHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	companyID, err := pathID(r, "companyID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	tables, err := h.registry.ListTables(r.Context(), companyID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	resp := make([]TableResponse, 0, len(tables))
	for _, t := range tables {
		resp = append(resp, newTableResponse(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

// AvailableTables answers GET .../tables/available?date=&start=&end=&party_size=
func (h *TableHandler) AvailableTables(w http.ResponseWriter, r *http.Request) {
	companyID, err := pathID(r, "companyID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	q := r.URL.Query()
	date, start, end, err := parseSlotParams(q.Get("date"), q.Get("start"), q.Get("end"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	partySize, err := strconv.Atoi(q.Get("party_size"))
	if err != nil {
		respondError(w, r, h.logger, badRequest("invalid party_size"))
		return
	}

	seq, err := h.reservations.FindAvailableTables(r.Context(), interfaces.AvailabilityQuery{
		CompanyID: companyID,
		Date:      date,
		Start:     start,
		End:       end,
		PartySize: partySize,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	resp := []TableResponse{}
	for t := range seq {
		resp = append(resp, newTableResponse(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *TableHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	tableID, err := pathID(r, "tableID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	table, err := h.registry.GetTable(r.Context(), tableID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newTableResponse(table))
}

func (h *TableHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	tableID, err := pathID(r, "tableID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req SetTableStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	table, err := h.registry.SetStatus(r.Context(), tableID, domain.TableStatus(req.Status))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newTableResponse(table))
}

func (h *TableHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	tableID, err := pathID(r, "tableID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	table, err := h.registry.Deactivate(r.Context(), tableID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newTableResponse(table))
}
