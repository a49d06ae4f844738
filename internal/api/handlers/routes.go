package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"dispatch-route-service/internal/api/dto"
	"dispatch-route-service/internal/domain"
	"dispatch-route-service/internal/platform/obs"
	"dispatch-route-service/internal/ports"
	"dispatch-route-service/internal/services"
)

// RouteHandler exposes route generation, optimization and lifecycle endpoints.
type RouteHandler struct {
	Generator *services.Generator
	Optimizer *services.Optimizer
	Lifecycle *services.Lifecycle
	Store     ports.Store
	Log       zerolog.Logger
}

func (h *RouteHandler) AutoGenerate(w http.ResponseWriter, r *http.Request) {
	var req dto.AutoGenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Log, http.StatusBadRequest, err.Error())
		return
	}
	if req.LocationID == 0 {
		writeError(w, r, h.Log, http.StatusBadRequest, "location_id is required")
		return
	}

	var date time.Time
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeError(w, r, h.Log, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	result, err := h.Generator.AutoGenerate(r.Context(), date, req.LocationID)
	if err != nil {
		writeDomainError(w, r, h.Log, err)
		return
	}

	obs.RoutesGenerated.Add(float64(result.RoutesCreated))

	res := dto.AutoGenerateResponse{
		RoutesCreated:    result.RoutesCreated,
		BookingsAssigned: result.BookingsAssigned,
		DriversRemaining: result.DriversRemaining,
		Routes:           make([]dto.RouteSummaryResponse, 0, len(result.Routes)),
	}
	for _, s := range result.Routes {
		res.Routes = append(res.Routes, dto.RouteSummaryResponse{
			RouteID:     s.RouteID,
			RouteNumber: s.RouteNumber,
			Zone:        s.Zone,
			StopCount:   s.StopCount,
			DriverName:  s.DriverName,
		})
	}

	status := http.StatusOK
	if result.RoutesCreated > 0 {
		status = http.StatusCreated
	}
	writeJSON(w, r, h.Log, status, res)
}

func (h *RouteHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	routeID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.Log, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.Optimizer.Optimize(r.Context(), routeID)
	if err != nil {
		writeDomainError(w, r, h.Log, err)
		return
	}

	if result.Optimized {
		obs.RoutesOptimized.Inc()
	}

	writeJSON(w, r, h.Log, http.StatusOK, dto.OptimizeResponse{
		RouteID:         result.RouteID,
		Optimized:       result.Optimized,
		Message:         result.Message,
		StopCount:       result.StopCount,
		OriginalKm:      result.OriginalKm,
		OptimizedKm:     result.OptimizedKm,
		DistanceSavedKm: result.DistanceSavedKm,
		TimeSavedMins:   result.TimeSavedMins,
	})
}

func (h *RouteHandler) AssignDriver(w http.ResponseWriter, r *http.Request) {
	routeID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.Log, http.StatusBadRequest, err.Error())
		return
	}

	var req dto.AssignDriverRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Log, http.StatusBadRequest, err.Error())
		return
	}
	if req.DriverID == 0 {
		writeError(w, r, h.Log, http.StatusBadRequest, "driver_id is required")
		return
	}

	route, err := h.Lifecycle.AssignDriver(r.Context(), routeID, req.DriverID, req.VehicleID)
	if err != nil {
		writeDomainError(w, r, h.Log, err)
		return
	}

	writeJSON(w, r, h.Log, http.StatusOK, routeResponse(route))
}

func (h *RouteHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	routeID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.Log, http.StatusBadRequest, err.Error())
		return
	}

	var req dto.ReorderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Log, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.StopOrder) == 0 {
		writeError(w, r, h.Log, http.StatusBadRequest, "stop_order is required")
		return
	}

	if err := h.Lifecycle.Reorder(r.Context(), routeID, req.StopOrder); err != nil {
		writeDomainError(w, r, h.Log, err)
		return
	}

	writeJSON(w, r, h.Log, http.StatusOK, map[string]string{"message": "route reordered"})
}

func (h *RouteHandler) Stops(w http.ResponseWriter, r *http.Request) {
	routeID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.Log, http.StatusBadRequest, err.Error())
		return
	}

	route, err := h.Store.Routes().Get(r.Context(), routeID)
	if err != nil {
		writeDomainError(w, r, h.Log, err)
		return
	}
	stops, err := h.Store.Stops().ListByRoute(r.Context(), routeID)
	if err != nil {
		writeDomainError(w, r, h.Log, err)
		return
	}

	res := dto.RouteDetailResponse{
		Route: routeResponse(route),
		Stops: make([]dto.StopResponse, 0, len(stops)),
	}
	for _, s := range stops {
		res.Stops = append(res.Stops, stopResponse(s))
	}

	writeJSON(w, r, h.Log, http.StatusOK, res)
}

func (h *RouteHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Lifecycle.Start)
}

func (h *RouteHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Lifecycle.Complete)
}

func (h *RouteHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Lifecycle.Cancel)
}

func (h *RouteHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, routeID int64) (*domain.Route, error),
) {
	routeID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.Log, http.StatusBadRequest, err.Error())
		return
	}

	route, err := fn(r.Context(), routeID)
	if err != nil {
		writeDomainError(w, r, h.Log, err)
		return
	}

	writeJSON(w, r, h.Log, http.StatusOK, routeResponse(route))
}

func routeResponse(route *domain.Route) dto.RouteResponse {
	return dto.RouteResponse{
		ID:              route.ID,
		RouteNumber:     route.RouteNumber,
		Date:            route.Date.Format("2006-01-02"),
		Status:          string(route.Status),
		DriverID:        route.DriverID,
		VehicleID:       route.VehicleID,
		StartLocationID: route.StartLocationID,
		StartTime:       route.StartTime,
		TotalStops:      route.TotalStops,
		CompletedStops:  route.CompletedStops,
		TotalDistanceKm: route.TotalDistanceKm,
		TotalDuration:   route.TotalDuration,
		TotalWeightKg:   route.TotalWeightKg,
		StartedAt:       route.StartedAt,
		CompletedAt:     route.CompletedAt,
		OptimizedAt:     route.OptimizedAt,
	}
}

func stopResponse(s *domain.RouteStop) dto.StopResponse {
	res := dto.StopResponse{
		ID:                 s.ID,
		RouteID:            s.RouteID,
		BookingID:          s.BookingID,
		Seq:                s.Seq,
		Address:            s.Address,
		WindowEnd:          s.WindowEnd,
		EstimatedArrival:   s.EstimatedArrival,
		EstimatedDeparture: s.EstimatedDeparture,
		ActualArrival:      s.ActualArrival,
		ActualDeparture:    s.ActualDeparture,
		DistanceFromPrevKm: s.DistanceFromPrevKm,
		Status:             string(s.Status),
		Notes:              s.Notes,
	}
	if s.Coords != nil {
		lat, lng := s.Coords.Lat, s.Coords.Lng
		res.Lat = &lat
		res.Lng = &lng
	}
	return res
}
