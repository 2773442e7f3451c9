package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dbehnke/viterbi-decoder/pkg/database"
	"github.com/dbehnke/viterbi-decoder/pkg/logger"
	"github.com/dbehnke/viterbi-decoder/pkg/metrics"
)

// API handles REST API endpoints.
type API struct {
	logger    *logger.Logger
	blockRepo *database.BlockRepository
	collector *metrics.Collector
}

// NewAPI creates a new API instance.
func NewAPI(log *logger.Logger) *API {
	return &API{
		logger: log,
	}
}

// SetDeps provides runtime dependencies to the API after construction.
// A nil argument leaves the corresponding dependency untouched, so callers
// can wire the repository and collector in separate calls.
func (a *API) SetDeps(repo *database.BlockRepository, collector *metrics.Collector) {
	if repo != nil {
		a.blockRepo = repo
	}
	if collector != nil {
		a.collector = collector
	}
}

// BlockRecordDTO is a lightweight response for a decoded block.
type BlockRecordDTO struct {
	ID              uint    `json:"id"`
	TrellisName     string  `json:"trellis_name"`
	BlockBits       int     `json:"block_bits"`
	Terminated      bool    `json:"terminated"`
	Spilled         bool    `json:"spilled"`
	SymbolsConsumed int     `json:"symbols_consumed"`
	BitsProduced    int     `json:"bits_produced"`
	TerminalMetric  float64 `json:"terminal_metric"`
	DecodedAt       int64   `json:"decoded_at"`
}

// HandleStatus handles the /api/status endpoint.
func (a *API) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := map[string]interface{}{
		"status":  "running",
		"service": "viterbi-decoder",
		"version": "dev",
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		a.logger.Error("Failed to encode status response", logger.Error(err))
	}
}

// HandleMetrics handles the /api/metrics endpoint, returning the
// current decoder counters as JSON (distinct from the Prometheus
// text-exposition endpoint served separately).
func (a *API) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := map[string]interface{}{
		"active_decoders":  0,
		"blocks_decoded":   0,
		"blocks_terminated": 0,
		"blocks_spilled":   0,
		"symbols_consumed": 0,
		"bits_produced":    0,
		"decode_errors":    0,
	}

	if a.collector != nil {
		response["active_decoders"] = a.collector.GetActiveDecoders()
		response["blocks_decoded"] = a.collector.GetBlocksDecoded()
		response["blocks_terminated"] = a.collector.GetBlocksTerminated()
		response["blocks_spilled"] = a.collector.GetBlocksSpilled()
		response["symbols_consumed"] = a.collector.GetSymbolsConsumed()
		response["bits_produced"] = a.collector.GetBitsProduced()
		response["decode_errors"] = a.collector.GetDecodeErrors()
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		a.logger.Error("Failed to encode metrics response", logger.Error(err))
	}
}

// HandleBlocks handles the /api/blocks endpoint, a paginated view of
// recently decoded blocks (the OUTPUT phase history).
func (a *API) HandleBlocks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if a.blockRepo == nil {
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(map[string]interface{}{
			"blocks":   []BlockRecordDTO{},
			"total":    0,
			"page":     1,
			"per_page": 50,
		}); err != nil {
			a.logger.Error("Failed to encode blocks response", logger.Error(err))
		}
		return
	}

	page := 1
	perPage := 50

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	if perPageStr := r.URL.Query().Get("per_page"); perPageStr != "" {
		if pp, err := strconv.Atoi(perPageStr); err == nil && pp > 0 && pp <= 100 {
			perPage = pp
		}
	}

	trellisName := r.URL.Query().Get("trellis")

	var records []database.BlockRecord
	var total int64
	var err error

	if trellisName != "" {
		records, err = a.blockRepo.GetByTrellis(trellisName, perPage)
		total = int64(len(records))
	} else {
		records, total, err = a.blockRepo.GetRecentPaginated(page, perPage)
	}

	if err != nil {
		a.logger.Error("Failed to get blocks", logger.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	dtos := make([]BlockRecordDTO, 0, len(records))
	for _, b := range records {
		dtos = append(dtos, BlockRecordDTO{
			ID:              b.ID,
			TrellisName:     b.TrellisName,
			BlockBits:       b.BlockBits,
			Terminated:      b.Terminated,
			Spilled:         b.Spilled,
			SymbolsConsumed: b.SymbolsConsumed,
			BitsProduced:    b.BitsProduced,
			TerminalMetric:  b.TerminalMetric,
			DecodedAt:       b.DecodedAt.Unix(),
		})
	}

	response := map[string]interface{}{
		"blocks":   dtos,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		a.logger.Error("Failed to encode blocks response", logger.Error(err))
	}
}
