package api

import (
	"net/http"
)

// handleUsageHistory serves the monthly snapshots written by the usage
// worker, newest first. An empty history is a 200 with an empty list.
func (s *Server) handleUsageHistory(w http.ResponseWriter, r *http.Request) {
	t := tenantFrom(r)

	snaps, err := s.usage.ListForTenant(r.Context(), t.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]usageSnapshotResponse, 0, len(snaps))
	for _, sn := range snaps {
		out = append(out, usageSnapshotResponse{
			Year:             sn.Year,
			Month:            sn.Month,
			StaffCount:       sn.StaffCount,
			AppointmentCount: sn.AppointmentCount,
			RecordedAt:       sn.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
