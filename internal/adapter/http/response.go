package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/YelzhanWeb/restaurant/internal/adapter/logger"
	"github.com/YelzhanWeb/restaurant/internal/domain"

	"github.com/go-chi/chi/v5"
)

type ErrorResponse struct {
	Error                    string `json:"error"`
	Message                  string `json:"message"`
	ConflictingReservationID *int64 `json:"conflicting_reservation_id,omitempty"`
}

var errBadRequest = errors.New("bad_request")

var errorCodes = map[error]string{
	domain.ErrCapacityExceeded:     "capacity_exceeded",
	domain.ErrInvalidTimeRange:     "invalid_time_range",
	domain.ErrInvalidPartySize:     "invalid_party_size",
	domain.ErrInvalidCapacity:      "invalid_capacity",
	domain.ErrInvalidTableNumber:   "invalid_table_number",
	domain.ErrInvalidShape:         "invalid_shape",
	domain.ErrInvalidTableStatus:   "invalid_table_status",
	domain.ErrEmptyOrder:           "empty_order",
	domain.ErrInvalidQuantity:      "invalid_quantity",
	domain.ErrInvalidPrice:         "invalid_price",
	domain.ErrAmountTooLarge:       "amount_too_large",
	domain.ErrInvalidItemName:      "invalid_item_name",
	domain.ErrInvalidOrderType:     "invalid_order_type",
	domain.ErrInvalidStatus:        "invalid_status",
	domain.ErrInvalidPayment:       "invalid_payment",
	domain.ErrInvalidTaxRate:       "invalid_tax_rate",
	domain.ErrInvalidTimelineEvent: "invalid_timeline_event",
	domain.ErrSlotConflict:         "slot_conflict",
	domain.ErrDuplicateTableNumber: "duplicate_table_number",
	domain.ErrInvalidTransition:    "invalid_transition",
	domain.ErrOrderClosed:          "order_closed",
	domain.ErrReservationClosed:    "reservation_closed",
	domain.ErrOrderLocked:          "order_locked",
	domain.ErrTableInUse:           "table_in_use",
	domain.ErrTableInactive:        "table_inactive",
	domain.ErrTableNotFound:        "table_not_found",
	domain.ErrReservationNotFound:  "reservation_not_found",
	domain.ErrOrderNotFound:        "order_not_found",
	domain.ErrOrderItemNotFound:    "order_item_not_found",
	domain.ErrInfrastructure:       "unavailable",
}

func errorCode(err error) string {
	// Wrapped errors can match several sentinels; the most specific wins.
	for _, target := range []error{domain.ErrReservationClosed, domain.ErrOrderClosed} {
		if errors.Is(err, target) {
			return errorCodes[target]
		}
	}
	for target, code := range errorCodes {
		if errors.Is(err, target) {
			return code
		}
	}
	return "internal"
}

func statusFor(err error) int {
	if errors.Is(err, errBadRequest) {
		return http.StatusBadRequest
	}
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindConflict, domain.KindState:
		return http.StatusConflict
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInfrastructure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(w http.ResponseWriter, r *http.Request, lgr logger.Logger, err error) {
	status := statusFor(err)
	resp := ErrorResponse{Error: errorCode(err), Message: err.Error()}
	if errors.Is(err, errBadRequest) {
		resp.Error = "bad_request"
	}

	var conflict *domain.SlotConflictError
	if errors.As(err, &conflict) {
		id := conflict.ReservationID
		resp.ConflictingReservationID = &id
	}

	if status >= http.StatusInternalServerError {
		lgr.Error("request_failed", "Request failed", logger.RequestID(r.Context()), map[string]interface{}{
			"path": r.URL.Path,
		}, err)
		if status == http.StatusInternalServerError {
			resp.Message = "internal server error"
		}
	}

	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func badRequest(msg string) error {
	return &requestError{msg: msg}
}

type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func (e *requestError) Is(target error) bool { return target == errBadRequest }

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return badRequest("invalid request body: " + err.Error())
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		return 0, badRequest("invalid " + name)
	}
	return id, nil
}
