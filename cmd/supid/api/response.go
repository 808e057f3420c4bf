package api

import (
	"encoding/json"
	"net/http"

	"github.com/supi-pay/supi/errors"
	"github.com/supi-pay/supi/x/otpescrow"
	"github.com/supi-pay/supi/x/sigs"
	"github.com/tendermint/tendermint/libs/log"
)

// JSONResp write content as JSON encoded response.
func JSONResp(w http.ResponseWriter, code int, content interface{}) {
	b, err := json.MarshalIndent(content, "", "\t")
	if err != nil {
		code = http.StatusInternalServerError
		b = []byte(`{"errors":["Internal Server Error"]}`)
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(code)
	_, _ = w.Write(b)
}

// JSONErr write single error as JSON encoded response.
func JSONErr(w http.ResponseWriter, code int, errText string) {
	JSONErrs(w, code, []string{errText})
}

// JSONErrs write multiple errors as JSON encoded response.
func JSONErrs(w http.ResponseWriter, code int, errs []string) {
	resp := struct {
		Errors []string `json:"errors"`
	}{
		Errors: errs,
	}
	JSONResp(w, code, resp)
}

func writeErr(w http.ResponseWriter, logger log.Logger, err error) {
	code := errorStatus(err)
	if code == http.StatusInternalServerError {
		logger.Error("request failed", "err", err)
		JSONErr(w, code, http.StatusText(code))
		return
	}
	JSONErr(w, code, err.Error())
}

// errorStatus maps the error root to the HTTP status code returned to the
// client.
func errorStatus(err error) int {
	switch {
	case errors.ErrNotFound.Is(err):
		return http.StatusNotFound
	case otpescrow.ErrAlreadyExists.Is(err),
		otpescrow.ErrAlreadyFinalized.Is(err),
		errors.ErrDuplicate.Is(err):
		return http.StatusConflict
	case otpescrow.ErrInvalidOTP.Is(err):
		return http.StatusForbidden
	case errors.ErrUnauthorized.Is(err),
		sigs.ErrInvalidSequence.Is(err):
		return http.StatusUnauthorized
	case otpescrow.ErrTransferFailed.Is(err),
		errors.ErrInsufficientAmount.Is(err),
		errors.ErrInvalidAmount.Is(err):
		return http.StatusUnprocessableEntity
	case errors.ErrInvalidInput.Is(err),
		errors.ErrInvalidMsg.Is(err),
		errors.ErrEmpty.Is(err),
		errors.ErrCurrency.Is(err),
		errors.ErrInvalidType.Is(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
