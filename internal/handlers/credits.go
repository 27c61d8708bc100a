// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"uisketch/internal/middleware"
)

// GetCredits returns the caller's quota snapshot. Reading may lazily
// reset the rolling window as a side effect.
func (a *API) GetCredits(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromCtx(r.Context())

	info, err := a.ledger.GetUserCredits(userID)
	if err != nil {
		slog.Error("get credits failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to load credits.")
		return
	}
	if info == nil {
		writeError(w, http.StatusNotFound, "User not found.")
		return
	}

	writeJSON(w, http.StatusOK, info)
}
