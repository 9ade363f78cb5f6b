package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"peoplenet/pkg/common"
	pkgerrors "peoplenet/pkg/errors"
)

// requireUserID returns the network owner resolved by the auth middleware
func requireUserID(r *http.Request) (string, error) {
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		return "", pkgerrors.NewUnauthorizedError("")
	}
	return userID, nil
}

// queryInt parses an optional integer query parameter
func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.NewFieldValidationError(name, "must be an integer")
	}
	return v, nil
}

// queryFloat parses an optional float query parameter
func queryFloat(r *http.Request, name string) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, pkgerrors.NewFieldValidationError(name, "must be a number")
	}
	return v, nil
}
