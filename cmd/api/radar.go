package main

import (
	"net/http"
	"strings"

	"github.com/farxc/procurement_radar/internal/response"
	"github.com/farxc/procurement_radar/internal/store"
)

type GetTopOpportunitiesResponse = response.APIResponse[[]store.Opportunity]
type GetPriorityProductsResponse = response.APIResponse[[]store.PriorityProduct]
type GetConcentrationRankingResponse = response.APIResponse[[]store.ConcentratedProduct]
type GetSpendByYearResponse = response.APIResponse[[]store.YearlySpend]
type GetRunHistoryResponse = response.APIResponse[[]store.PipelineRunHistory]

func isValidUFs(ufParam string) bool {
	for _, uf := range strings.Split(ufParam, ",") {
		if len(uf) != 2 {
			return false
		}
		for _, r := range uf {
			if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
				return false
			}
		}
	}
	return true
}

func (app *application) handleGetTopOpportunities(w http.ResponseWriter, r *http.Request) {
	var filter store.AnalyticsFilter

	ufParam := r.URL.Query().Get("uf")
	if ufParam != "" {
		if !isValidUFs(ufParam) {
			writeJSONError(w, http.StatusBadRequest, "invalid uf parameter")
			return
		}
		filter.UFs = strings.Split(strings.ToUpper(ufParam), ",")
	}

	year, ok := parseIntParam(r.URL.Query().Get("year"), 0)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid year parameter")
		return
	}
	filter.Year = year

	limit, ok := parseIntParam(r.URL.Query().Get("limit"), 20)
	if !ok || limit < 1 || limit > 500 {
		writeJSONError(w, http.StatusBadRequest, "invalid limit parameter")
		return
	}

	ctx := r.Context()
	data, err := app.store.Analytics.GetTopOpportunities(ctx, filter, limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to get top opportunities: "+err.Error())
		return
	}

	response := &GetTopOpportunitiesResponse{
		Success: true,
		Data:    data,
		Message: "Successfully ranked purchase lines by estimated savings",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

func (app *application) handleGetPriorityProducts(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseIntParam(r.URL.Query().Get("limit"), 20)
	if !ok || limit < 1 || limit > 500 {
		writeJSONError(w, http.StatusBadRequest, "invalid limit parameter")
		return
	}

	ctx := r.Context()
	data, err := app.store.Analytics.GetPriorityProducts(ctx, limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to get priority products: "+err.Error())
		return
	}

	response := &GetPriorityProductsResponse{
		Success: true,
		Data:    data,
		Message: "Successfully ranked medicines by prioritization index",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

func (app *application) handleGetConcentrationRanking(w http.ResponseWriter, r *http.Request) {
	threshold, ok := parseFloatParam(r.URL.Query().Get("threshold"), 0.8)
	if !ok || threshold < 0 || threshold > 1 {
		writeJSONError(w, http.StatusBadRequest, "invalid threshold parameter")
		return
	}

	limit, ok := parseIntParam(r.URL.Query().Get("limit"), 20)
	if !ok || limit < 1 || limit > 500 {
		writeJSONError(w, http.StatusBadRequest, "invalid limit parameter")
		return
	}

	ctx := r.Context()
	data, err := app.store.Analytics.GetConcentrationRanking(ctx, threshold, limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to get concentration ranking: "+err.Error())
		return
	}

	response := &GetConcentrationRankingResponse{
		Success: true,
		Data:    data,
		Message: "Successfully ranked medicines by supplier concentration",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

func (app *application) handleGetSpendByYear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data, err := app.store.Analytics.GetSpendByYear(ctx)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to get spend by year: "+err.Error())
		return
	}

	response := &GetSpendByYearResponse{
		Success: true,
		Data:    data,
		Message: "Successfully aggregated spend by year",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

func (app *application) handleGetRunHistory(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseIntParam(r.URL.Query().Get("limit"), 10)
	if !ok || limit < 1 || limit > 100 {
		writeJSONError(w, http.StatusBadRequest, "invalid limit parameter")
		return
	}

	ctx := r.Context()
	data, err := app.store.RunHistory.GetLatest(ctx, limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to get run history: "+err.Error())
		return
	}

	response := &GetRunHistoryResponse{
		Success: true,
		Data:    data,
		Message: "Successfully fetched pipeline run history",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}
