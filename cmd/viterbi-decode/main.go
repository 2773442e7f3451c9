// Command viterbi-decode reads a soft-symbol stream and drives the
// soft-decision Viterbi decoder over it, one block at a time.
package main

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dbehnke/viterbi-decoder/internal/decoder"
	"github.com/dbehnke/viterbi-decoder/internal/trellis"
	"github.com/dbehnke/viterbi-decoder/pkg/config"
	"github.com/dbehnke/viterbi-decoder/pkg/database"
	"github.com/dbehnke/viterbi-decoder/pkg/events"
	"github.com/dbehnke/viterbi-decoder/pkg/logger"
	"github.com/dbehnke/viterbi-decoder/pkg/metrics"
	"github.com/dbehnke/viterbi-decoder/pkg/web"
)

var (
	version   = "dev"
	gitCommit = "unknown"
	buildTime = "unknown"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	validateOnly := flag.Bool("validate", false, "Validate configuration and exit")
	selfTest := flag.Bool("selftest", false, "Decode a synthetic self-encoded fixture instead of reading input")
	inputPath := flag.String("input", "-", "Path to soft-symbol input file (little-endian float32), or - for stdin")
	outputPath := flag.String("output", "-", "Path to write decoded bits, or - for stdout")
	outputBudgetBytes := flag.Int("output-budget-bytes", 0, "Override decoder.output_budget_bytes from config (0 = use config)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("viterbi-decoder %s\n", version)
		fmt.Printf("Git Commit: %s\n", gitCommit)
		fmt.Printf("Built: %s\n", buildTime)
		os.Exit(0)
	}

	log := logger.New(logger.Config{Level: "info", Format: "text"})

	log.Info("Starting viterbi-decoder",
		logger.String("version", version),
		logger.String("commit", gitCommit),
		logger.String("build_time", buildTime))

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Error("Failed to load configuration", logger.Error(err))
		os.Exit(1)
	}

	if *validateOnly {
		log.Info("Configuration is valid")
		os.Exit(0)
	}

	log.Info("Configuration loaded successfully",
		logger.String("config_file", *configFile))

	log = logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	spec := trellis.Spec{
		ConstraintLength: cfg.Trellis.ConstraintLength,
		Generators:       cfg.Trellis.Generators,
		BlockBits:        cfg.Trellis.BlockBits,
		Terminate:        cfg.Trellis.Terminate,
	}

	table, err := trellis.Build(spec)
	if err != nil {
		log.Error("Failed to build trellis", logger.Error(err))
		os.Exit(1)
	}

	budgetBytes := cfg.Decoder.OutputBudgetBytes
	if *outputBudgetBytes > 0 {
		budgetBytes = *outputBudgetBytes
	}

	dec, err := decoder.New(table, cfg.Decoder.SamplePrecision, cfg.Decoder.Muxed)
	if err != nil {
		log.Error("Failed to construct decoder", logger.Error(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	metricsCollector := metrics.NewCollector()

	var blockRepo *database.BlockRepository
	if cfg.Database.Enabled {
		db, err := database.NewDB(database.Config{Path: cfg.Database.Path}, log.WithComponent("database"))
		if err != nil {
			log.Error("Failed to initialize database", logger.Error(err))
			os.Exit(1)
		}
		defer db.Close()
		blockRepo = database.NewBlockRepository(db.GetDB())
		log.Info("Database initialized")
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Prometheus.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			metricsServer := metrics.NewPrometheusServer(
				metrics.PrometheusConfig{
					Enabled: cfg.Metrics.Prometheus.Enabled,
					Port:    cfg.Metrics.Prometheus.Port,
					Path:    cfg.Metrics.Prometheus.Path,
				},
				metricsCollector,
				log.WithComponent("metrics"),
			)
			if err := metricsServer.Start(ctx); err != nil && err != context.Canceled {
				log.Error("Prometheus metrics server error", logger.Error(err))
			}
		}()
		log.Info("Prometheus metrics server started",
			logger.Int("port", cfg.Metrics.Prometheus.Port),
			logger.String("path", cfg.Metrics.Prometheus.Path))
	}

	var eventPublisher *events.Publisher
	if cfg.Events.Enabled {
		eventPublisher = events.New(
			events.Config{
				Enabled:     cfg.Events.Enabled,
				Broker:      cfg.Events.Broker,
				TopicPrefix: cfg.Events.TopicPrefix,
				ClientID:    cfg.Events.ClientID,
				Username:    cfg.Events.Username,
				Password:    cfg.Events.Password,
				QoS:         cfg.Events.QoS,
				Retained:    cfg.Events.Retained,
			},
			log.WithComponent("events"),
		)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := eventPublisher.Start(ctx); err != nil && err != context.Canceled {
				log.Error("Event publisher error", logger.Error(err))
			}
		}()
		log.Info("Event publisher started",
			logger.String("broker", cfg.Events.Broker),
			logger.String("topic_prefix", cfg.Events.TopicPrefix))
	}

	if cfg.Web.Enabled {
		webServer := web.NewServer(cfg.Web, log.WithComponent("web")).
			WithBlockRepo(blockRepo).
			WithCollector(metricsCollector)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := webServer.Start(ctx); err != nil && err != context.Canceled {
				log.Error("Web server error", logger.Error(err))
			}
		}()
		log.Info("Web server started",
			logger.String("host", cfg.Web.Host),
			logger.Int("port", cfg.Web.Port))
	}

	log.Info("viterbi-decoder initialized",
		logger.String("server_name", cfg.Server.Name))

	decodeDone := make(chan error, 1)
	go func() {
		decodeDone <- runDecode(dec, table, *selfTest, *inputPath, *outputPath, budgetBytes, metricsCollector, blockRepo, eventPublisher, log, cfg.Trellis)
	}()

	var runErr error
	select {
	case runErr = <-decodeDone:
	case sig := <-sigChan:
		log.Info("Received shutdown signal", logger.String("signal", sig.String()))
		runErr = <-decodeDone
	}

	cancel()
	if eventPublisher != nil {
		eventPublisher.Stop()
	}
	wg.Wait()

	if runErr != nil {
		log.Error("Decode run failed", logger.Error(runErr))
		os.Exit(1)
	}

	log.Info("viterbi-decoder stopped")
}

// runDecode drives the decoder to exhaustion over one input stream,
// choosing between a self-test fixture and a real file/stdin source.
func runDecode(
	dec *decoder.Decoder,
	table *trellis.Table,
	selfTest bool,
	inputPath, outputPath string,
	budgetBytes int,
	collector *metrics.Collector,
	blockRepo *database.BlockRepository,
	publisher *events.Publisher,
	log *logger.Logger,
	trellisCfg config.TrellisConfig,
) error {
	var symbols []float32
	if selfTest {
		data := make([]byte, (trellisCfg.BlockBits+7)/8)
		for i := range data {
			data[i] = byte(0x55 + i)
		}
		spec := trellis.Spec{
			ConstraintLength: trellisCfg.ConstraintLength,
			Generators:       trellisCfg.Generators,
			BlockBits:        trellisCfg.BlockBits,
			Terminate:        trellisCfg.Terminate,
		}
		symbols = trellis.Encode(spec, data, trellisCfg.BlockBits)
		log.Info("Self-test fixture generated",
			logger.Int("block_bits", trellisCfg.BlockBits),
			logger.Int("symbols", len(symbols)))
	} else {
		in, err := openInput(inputPath)
		if err != nil {
			return err
		}
		defer in.Close()

		symbols, err = readFloat32Stream(in)
		if err != nil {
			return err
		}
	}

	out, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	k := table.K()
	trellisName := fmt.Sprintf("K%d", table.S())

	collector.DecoderStarted(trellisName)
	defer collector.DecoderStopped(trellisName)

	inputs := [][]float32{symbols}

	byteBudget := budgetBytes
	if byteBudget <= 0 {
		byteBudget = 4096
	}
	outputs := make([][]byte, k)
	for i := range outputs {
		outputs[i] = make([]byte, byteBudget)
	}

	totalConsumed := 0
	for totalConsumed < len(symbols) {
		remaining := inputs
		if totalConsumed > 0 {
			remaining = [][]float32{symbols[totalConsumed:]}
		}

		bitsProduced, symbolsConsumed := dec.Decode(remaining, byteBudget, outputs)

		consumedThisCall := 0
		for _, c := range symbolsConsumed {
			consumedThisCall = c
		}
		if consumedThisCall == 0 {
			break
		}
		totalConsumed += consumedThisCall

		for idx, bits := range bitsProduced {
			collector.BitsProduced(bits)
			if bits > 0 {
				nBytes := (bits + 7) / 8
				if nBytes > len(outputs[idx]) {
					nBytes = len(outputs[idx])
				}
				if _, err := out.Write(outputs[idx][:nBytes]); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
			}
		}

		collector.SymbolsConsumed(consumedThisCall)
		collector.BlockDecoded(table.Terminate(), false)

		if publisher != nil {
			_ = publisher.PublishBlockDecoded(events.BlockDecodedEvent{
				TrellisName:     trellisName,
				Terminated:      table.Terminate(),
				SymbolsConsumed: consumedThisCall,
			})
		}

		if blockRepo != nil {
			_ = blockRepo.Create(&database.BlockRecord{
				TrellisName:     trellisName,
				BlockBits:       table.BlockBits(),
				Terminated:      table.Terminate(),
				SymbolsConsumed: consumedThisCall,
			})
		}
	}

	return nil
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func readFloat32Stream(r io.Reader) ([]float32, error) {
	var out []float32
	buf := make([]byte, 4)
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, err
		}
		bits := binary.LittleEndian.Uint32(buf)
		out = append(out, math.Float32frombits(bits))
	}
	return out, nil
}
